package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/params"
)

var memModule string

var memoriesCmd = &cobra.Command{
	Use:   "memories <file>",
	Short: "Show reconstructed logical memories",
	Long: `Group memory cells by memory id and print each logical memory with its
array cell, read ports, write ports and initializers.

Examples:
  netlist memories design.json
  netlist memories design.json --module ram`,
	Args: cobra.ExactArgs(1),
	RunE: runMemories,
}

func init() {
	rootCmd.AddCommand(memoriesCmd)

	memoriesCmd.Flags().StringVarP(&memModule, "module", "m", "", "only show this module")
}

func runMemories(cmd *cobra.Command, args []string) error {
	d, err := loadDesign(args[0], cfg.Policy())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	modules := d.Modules
	if memModule != "" {
		m, err := pickModule(d, memModule)
		if err != nil {
			return err
		}
		modules = []*netlist.Module{m}
	}

	total := 0
	for _, m := range modules {
		for _, mem := range m.Memories {
			printMemory(w, m, mem)
			total++
		}
	}
	if total == 0 {
		fmt.Fprintln(w, "no memories")
	}
	return nil
}

func printMemory(w io.Writer, m *netlist.Module, mem *netlist.LogicalMemory) {
	header(w, "%s.%s", m.Name, mem.ID)

	array := "-"
	if mem.HasArray() {
		array = m.Cells[mem.ArrayCell].Name
	}
	rows := [][]string{
		{"width", strconv.Itoa(mem.Width(m.Cells))},
		{"size", strconv.Itoa(mem.Size(m.Cells))},
		{"array", array},
		{"read ports", cellNames(m, mem.ReadPorts)},
		{"write ports", writePorts(m, mem)},
		{"init cells", cellNames(m, mem.InitCells)},
	}
	if mem.Meta != nil && mem.Meta.StartOffset != 0 {
		rows = append(rows, []string{"offset", strconv.Itoa(mem.Meta.StartOffset)})
	}
	table(w, "  ", rows)
	fmt.Fprintln(w)
}

func cellNames(m *netlist.Module, idx []int) string {
	if len(idx) == 0 {
		return "-"
	}
	names := make([]string, len(idx))
	for i, ci := range idx {
		names[i] = m.Cells[ci].Name
	}
	return strings.Join(names, ", ")
}

// writePorts lists write ports with their port id and the ports they
// take priority over.
func writePorts(m *netlist.Module, mem *netlist.LogicalMemory) string {
	if len(mem.WritePorts) == 0 {
		return "-"
	}
	parts := make([]string, len(mem.WritePorts))
	for i, ci := range mem.WritePorts {
		c := m.Cells[ci]
		p, ok := c.Params.(*params.MemWriteParams)
		if !ok || !p.Indexed() {
			parts[i] = c.Name
			continue
		}
		s := fmt.Sprintf("%s#%d", c.Name, p.PortID)
		if over := p.Overrides(); len(over) > 0 {
			ids := make([]string, len(over))
			for j, id := range over {
				ids[j] = strconv.Itoa(id)
			}
			s += " over " + strings.Join(ids, ",")
		}
		parts[i] = s
	}
	return strings.Join(parts, ", ")
}
