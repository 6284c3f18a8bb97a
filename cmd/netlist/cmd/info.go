package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/celltype"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Summarize the modules of a netlist",
	Long: `Import a netlist and print one summary per module: ports by direction,
cells by kind, nets and reconstructed memories.

Examples:
  netlist info design.json
  netlist info --top cpu design.il`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	d, err := loadDesign(args[0], cfg.Policy())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if d.Creator != "" {
		fmt.Fprintf(w, "Creator: %s\n", d.Creator)
	}
	fmt.Fprintf(w, "Modules: %d\n\n", len(d.Modules))

	for _, m := range d.Modules {
		header(w, "module %s", m.Name)

		dirs := map[netlist.Direction]int{}
		for _, p := range m.Ports {
			dirs[p.Direction]++
		}
		rows := [][]string{
			{"ports", strconv.Itoa(len(m.Ports)), fmt.Sprintf("%d in, %d out, %d inout",
				dirs[netlist.DirInput], dirs[netlist.DirOutput], dirs[netlist.DirInout])},
			{"cells", strconv.Itoa(len(m.Cells)), ""},
		}
		for _, kc := range cellKinds(m) {
			rows = append(rows, []string{"  " + kc.label, strconv.Itoa(kc.count), ""})
		}
		rows = append(rows,
			[]string{"nets", strconv.Itoa(len(m.Nets)), ""},
			[]string{"memories", strconv.Itoa(len(m.Memories)), ""},
		)
		table(w, "  ", rows)

		if verbose {
			for _, p := range m.Ports {
				fmt.Fprintf(w, "    %-8s %s [%d]\n", p.Direction, p.Name, p.Width())
			}
		}
		fmt.Fprintln(w)
	}

	if n := len(d.Diagnostics); n > 0 {
		warnColor.Fprintf(w, "%d cell(s) skipped\n", n)
	}
	return nil
}

type kindCount struct {
	label string
	count int
}

// cellKinds counts cells per kind. Instances are counted per module type.
func cellKinds(m *netlist.Module) []kindCount {
	counts := map[string]int{}
	for _, c := range m.Cells {
		label := c.Type.Kind.String()
		if c.Type.Level == celltype.LevelModule {
			label = "instance " + c.Type.ID
		}
		counts[label]++
	}
	out := make([]kindCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, kindCount{label, n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].label < out[j].label })
	return out
}
