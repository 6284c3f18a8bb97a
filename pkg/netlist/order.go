package netlist

import (
	"sort"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/celltype"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/yosys"
)

// Order is a module build order.
type Order struct {
	// Modules lists every module once; instantiated modules come before
	// the modules that instantiate them.
	Modules []string
	// Cyclic names the modules caught in or behind an instantiation cycle.
	// They lead Modules in name order and their relative order does not
	// respect dependencies.
	Cyclic []string
}

// IsCyclic reports whether the order could not be fully resolved.
func (o Order) IsCyclic() bool { return len(o.Cyclic) > 0 }

// Dependencies returns, per module, the sorted distinct set of user modules
// it instantiates. Primitive cells and unknown module types are ignored.
func Dependencies(d *yosys.Design) map[string][]string {
	known := make(map[string]bool, len(d.Modules))
	for _, m := range d.Modules {
		known[m.Name] = true
	}
	deps := make(map[string][]string, len(d.Modules))
	for _, m := range d.Modules {
		seen := make(map[string]bool)
		var list []string
		for _, c := range m.Cells {
			if celltype.IsPrimitiveID(c.Type) || !known[c.Type] || seen[c.Type] {
				continue
			}
			seen[c.Type] = true
			list = append(list, c.Type)
		}
		sort.Strings(list)
		deps[m.Name] = list
	}
	return deps
}

// BuildOrder sorts the modules of d topologically. The traversal starts at
// the modules nothing instantiates and is reversed at the end. Modules a
// cycle keeps from being reached are placed first, sorted by name, so the
// result always covers every module exactly once.
func BuildOrder(d *yosys.Design) Order {
	deps := Dependencies(d)

	indeg := make(map[string]int, len(d.Modules))
	for _, m := range d.Modules {
		for _, dep := range deps[m.Name] {
			indeg[dep]++
		}
	}

	var queue, visited []string
	for _, m := range d.Modules {
		if indeg[m.Name] == 0 {
			queue = append(queue, m.Name)
		}
	}
	done := make(map[string]bool, len(d.Modules))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		visited = append(visited, n)
		done[n] = true
		for _, dep := range deps[n] {
			indeg[dep]--
			if indeg[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	var o Order
	for _, m := range d.Modules {
		if !done[m.Name] {
			o.Cyclic = append(o.Cyclic, m.Name)
		}
	}
	sort.Strings(o.Cyclic)

	o.Modules = make([]string, 0, len(d.Modules))
	o.Modules = append(o.Modules, o.Cyclic...)
	for i := len(visited) - 1; i >= 0; i-- {
		o.Modules = append(o.Modules, visited[i])
	}
	return o
}

// Restrict keeps only top and the modules reachable from it through deps.
// The relative order is unchanged. An unknown top yields an empty order.
func (o Order) Restrict(top string, deps map[string][]string) Order {
	reach := map[string]bool{}
	var walk func(string)
	walk = func(n string) {
		if reach[n] {
			return
		}
		reach[n] = true
		for _, dep := range deps[n] {
			walk(dep)
		}
	}
	if _, ok := deps[top]; ok {
		walk(top)
	}

	var out Order
	for _, n := range o.Modules {
		if reach[n] {
			out.Modules = append(out.Modules, n)
		}
	}
	for _, n := range o.Cyclic {
		if reach[n] {
			out.Cyclic = append(out.Cyclic, n)
		}
	}
	return out
}
