package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

var (
	netModule string
	netName   string
)

var netsCmd = &cobra.Command{
	Use:   "nets <file>",
	Short: "List nets with their drivers and loads",
	Long: `List the nets of one module with their fan-in and fan-out. With --net,
print every endpoint of a single net, selected by name or numeric id.

Examples:
  netlist nets design.json --module top
  netlist nets design.json --module top --net 'count[3]'
  netlist nets design.json --module top --net 17`,
	Args: cobra.ExactArgs(1),
	RunE: runNets,
}

func init() {
	rootCmd.AddCommand(netsCmd)

	netsCmd.Flags().StringVarP(&netModule, "module", "m", "", "module to inspect")
	netsCmd.Flags().StringVarP(&netName, "net", "n", "", "net name or id")
}

func runNets(cmd *cobra.Command, args []string) error {
	d, err := loadDesign(args[0], cfg.Policy())
	if err != nil {
		return err
	}
	m, err := pickModule(d, netModule)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if netName != "" {
		n := findNet(m, netName)
		if n == nil {
			return fmt.Errorf("net %q not found in module %s", netName, m.Name)
		}
		printNet(w, m, n)
		return nil
	}

	header(w, "module %s: %d nets", m.Name, len(m.Nets))
	rows := [][]string{{"ID", "NAME", "DRIVERS", "LOADS"}}
	for _, n := range m.Nets {
		rows = append(rows, []string{
			strconv.Itoa(n.ID),
			n.Name,
			strconv.Itoa(len(m.Drivers(n.ID))),
			strconv.Itoa(len(m.Loads(n.ID))),
		})
	}
	table(w, "  ", rows)
	return nil
}

func findNet(m *netlist.Module, s string) *netlist.Net {
	if n := m.NetByName(s); n != nil {
		return n
	}
	if id, err := strconv.Atoi(s); err == nil {
		return m.Net(id)
	}
	return nil
}

func printNet(w io.Writer, m *netlist.Module, n *netlist.Net) {
	header(w, "net %s (id %d)", n.Name, n.ID)

	drivers := m.Drivers(n.ID)
	if len(drivers) == 0 {
		warnColor.Fprintln(w, "  undriven")
	} else if len(drivers) > 1 {
		warnColor.Fprintf(w, "  %d drivers\n", len(drivers))
	}
	fmt.Fprintln(w, "  drivers:")
	table(w, "    ", endpointRows(m, drivers))
	fmt.Fprintln(w, "  loads:")
	table(w, "    ", endpointRows(m, m.Loads(n.ID)))

	if verbose {
		fmt.Fprintln(w, "  all endpoints:")
		table(w, "    ", endpointRows(m, n.Endpoints))
	}
}

func endpointRows(m *netlist.Module, refs []netlist.EndpointRef) [][]string {
	rows := make([][]string, 0, len(refs))
	for _, ref := range refs {
		r, ok := m.Resolve(ref)
		if !ok {
			continue
		}
		kind := "port"
		owner := r.Owner
		if r.IsCell {
			kind = "cell"
			if c := m.Cells[ref.Owner]; c != nil {
				kind = c.Type.ID
			}
			owner = r.Owner + "." + r.Port
		}
		rows = append(rows, []string{fmt.Sprintf("%s[%d]", owner, r.Bit), r.Direction.String(), kind})
	}
	return rows
}
