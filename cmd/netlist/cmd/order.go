package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

var orderCmd = &cobra.Command{
	Use:   "order <file>",
	Short: "Print the module build order",
	Long: `Print the modules in dependency order: every module comes after the
modules it instantiates. Modules caught in an instantiation cycle are
reported and listed first.

Examples:
  netlist order design.json
  netlist order --top soc design.il`,
	Args: cobra.ExactArgs(1),
	RunE: runOrder,
}

func init() {
	rootCmd.AddCommand(orderCmd)
}

func runOrder(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	order := netlist.BuildOrder(doc)
	deps := netlist.Dependencies(doc)
	if cfg.Import.Top != "" {
		if doc.Module(cfg.Import.Top) == nil {
			return fmt.Errorf("%w: %s", netlist.ErrTopNotFound, cfg.Import.Top)
		}
		order = order.Restrict(cfg.Import.Top, deps)
	}

	header(w, "Build order (%d modules)", len(order.Modules))
	rows := make([][]string, 0, len(order.Modules))
	for i, name := range order.Modules {
		uses := strings.Join(deps[name], ", ")
		if uses != "" {
			uses = "uses " + uses
		}
		rows = append(rows, []string{fmt.Sprintf("%d.", i+1), name, uses})
	}
	table(w, "  ", rows)

	if order.IsCyclic() {
		fmt.Fprintln(w)
		warnColor.Fprintf(w, "instantiation cycle: %s\n", strings.Join(order.Cyclic, ", "))
	}
	return nil
}
