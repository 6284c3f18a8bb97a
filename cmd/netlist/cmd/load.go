package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/OpenTraceLab/OpenTraceNetlist/internal/config"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/rtlil"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/yosys"
)

// detectFormat picks the front-end for a file. The extension decides when
// it is known; otherwise a document opening with '{' is JSON.
func detectFormat(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return config.FormatJSON
	case ".il", ".rtlil":
		return config.FormatRTLIL
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return config.FormatJSON
	}
	return config.FormatRTLIL
}

// readDocument decodes path with the configured front-end.
func readDocument(path string) (*yosys.Design, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	f := cfg.Import.Format
	if f == "" || f == config.FormatAuto {
		f = detectFormat(path, data)
	}
	logger.WithFields(logrus.Fields{"path": path, "format": f}).Debug("reading document")

	var doc *yosys.Design
	switch f {
	case config.FormatJSON:
		doc, err = yosys.DecodeBytes(data, yosys.WithSchema(cfg.Import.ValidateSchema))
	default:
		doc, err = rtlil.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// loadDesign reads and builds path with the given policy.
func loadDesign(path string, policy netlist.Policy) (*netlist.Design, error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	opts := []netlist.Option{netlist.WithPolicy(policy), netlist.WithLogger(logger)}
	if cfg.Import.Top != "" {
		opts = append(opts, netlist.WithTop(cfg.Import.Top))
	}
	return netlist.Build(doc, opts...)
}

// pickModule returns the named module, or the only module when name is
// empty.
func pickModule(d *netlist.Design, name string) (*netlist.Module, error) {
	if name == "" {
		if len(d.Modules) == 1 {
			return d.Modules[0], nil
		}
		return nil, fmt.Errorf("design has %d modules, select one with --module", len(d.Modules))
	}
	m := d.Module(name)
	if m == nil {
		return nil, fmt.Errorf("module %q not found", name)
	}
	return m, nil
}
