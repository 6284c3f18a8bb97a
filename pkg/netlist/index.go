package netlist

import (
	"fmt"

	"fortio.org/safecast"
)

// RefKind tells module port bits and cell endpoints apart.
type RefKind uint8

const (
	RefPort RefKind = iota
	RefCell
)

func (k RefKind) String() string {
	if k == RefCell {
		return "cell"
	}
	return "port"
}

// EndpointRef is the public view of one index entry. For RefPort, Owner is
// the port index and Index the bit within the port. For RefCell, Owner is
// the cell index and Index the position in the cell's Endpoints, not a port
// bit; Module.Resolve maps it to the port name and bit.
type EndpointRef struct {
	Kind  RefKind
	Owner int
	Index int
}

// Packed layout: kind in the top 2 bits, owner in the next 30, index in the
// low 32.
const (
	kindShift  = 62
	ownerShift = 32
	ownerMask  = 1<<30 - 1
	indexMask    = 1<<32 - 1
)

func pack(ref EndpointRef) uint64 {
	owner, err := safecast.Conv[uint32](ref.Owner)
	if err != nil || owner > ownerMask {
		panic(fmt.Errorf("netlist: endpoint owner %d out of range", ref.Owner))
	}
	index, err := safecast.Conv[uint32](ref.Index)
	if err != nil {
		panic(fmt.Errorf("netlist: endpoint index %d out of range: %w", ref.Index, err))
	}
	return uint64(ref.Kind)<<kindShift | uint64(owner)<<ownerShift | uint64(index)
}

func unpack(v uint64) EndpointRef {
	return EndpointRef{
		Kind:  RefKind(v >> kindShift),
		Owner: int(v >> ownerShift & ownerMask),
		Index: int(v & indexMask),
	}
}

// NetIndex maps net ids to the endpoints that touch them. It is built once
// per module and never modified afterwards.
type NetIndex struct {
	nets  map[int][]uint64
	order []int
}

// BuildIndex indexes the module ports first and then every cell endpoint,
// keeping encounter order. Constant bits are not nets and are skipped.
func BuildIndex(ports []*ModulePort, cells []*Cell) *NetIndex {
	idx := &NetIndex{nets: make(map[int][]uint64)}
	for pi, p := range ports {
		for bi, ref := range p.Bits {
			if id, ok := ref.Net(); ok {
				idx.add(id, EndpointRef{Kind: RefPort, Owner: pi, Index: bi})
			}
		}
	}
	for ci, c := range cells {
		for ei, ep := range c.Endpoints {
			if id, ok := ep.Ref.Net(); ok {
				idx.add(id, EndpointRef{Kind: RefCell, Owner: ci, Index: ei})
			}
		}
	}
	return idx
}

func (idx *NetIndex) add(id int, ref EndpointRef) {
	if _, ok := idx.nets[id]; !ok {
		idx.order = append(idx.order, id)
	}
	idx.nets[id] = append(idx.nets[id], pack(ref))
}

// EndpointsOf returns every endpoint touching net id.
func (idx *NetIndex) EndpointsOf(id int) []EndpointRef {
	packed := idx.nets[id]
	out := make([]EndpointRef, len(packed))
	for i, v := range packed {
		out[i] = unpack(v)
	}
	return out
}

// NetIDs returns the ids of all nets with at least one endpoint, in the
// order they were first encountered.
func (idx *NetIndex) NetIDs() []int {
	out := make([]int, len(idx.order))
	copy(out, idx.order)
	return out
}

// Len returns the number of indexed nets.
func (idx *NetIndex) Len() int { return len(idx.order) }
