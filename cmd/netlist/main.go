package main

import "github.com/OpenTraceLab/OpenTraceNetlist/cmd/netlist/cmd"

func main() {
	cmd.Execute()
}
