package params

import "github.com/OpenTraceLab/OpenTraceNetlist/pkg/celltype"

// GateParams describes a single-bit combinational gate. Gates carry no
// parameters; the port layout follows from the identifier.
type GateParams struct {
	ID      string
	Inputs  []string
	Outputs []string
}

func (p *GateParams) Op() string { return p.ID }
func (p *GateParams) sealed()    {}

func (p *GateParams) Widths() map[string]int {
	w := make(map[string]int, len(p.Inputs)+len(p.Outputs))
	for _, n := range p.Inputs {
		w[n] = 1
	}
	for _, n := range p.Outputs {
		w[n] = 1
	}
	return w
}

func decodeGate(ct celltype.CellType) *GateParams {
	in, out, _ := celltype.GatePorts(ct.ID)
	return &GateParams{ID: ct.ID, Inputs: in, Outputs: out}
}
