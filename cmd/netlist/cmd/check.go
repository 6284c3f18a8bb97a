package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

var errCheckFailed = errors.New("check failed")

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate every cell and report failures",
	Long: `Build the design in best-effort mode and print every cell that failed
validation. The command exits with status 1 when any cell failed.

Examples:
  netlist check design.json
  netlist check -v design.il`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	d, err := loadDesign(args[0], netlist.PolicyBestEffort)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	cells := 0
	for _, m := range d.Modules {
		cells += len(m.Cells)
	}

	if len(d.Diagnostics) == 0 {
		okColor.Fprintf(w, "OK: %d modules, %d cells\n", len(d.Modules), cells)
		return nil
	}

	rows := make([][]string, 0, len(d.Diagnostics))
	for _, ce := range d.Diagnostics {
		rows = append(rows, []string{ce.Module, ce.Cell, ce.Type, ce.Err.Error()})
	}
	errorColor.Fprintf(w, "%d invalid cell(s)\n", len(d.Diagnostics))
	table(w, "  ", rows)

	return fmt.Errorf("%w: %d invalid cell(s)", errCheckFailed, len(d.Diagnostics))
}
