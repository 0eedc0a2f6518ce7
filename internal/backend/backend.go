// Package backend turns a lowered definition table into output bytes.
// This allows switching between the wire encodings and the text listing.
package backend

import (
	"fmt"
	"sort"

	"github.com/funvibe/asc/internal/ir"
	"github.com/funvibe/asc/internal/prettyprinter"
)

// Backend is the interface for output encoders
type Backend interface {
	// Emit encodes the definition table
	Emit(defs ir.Defs) ([]byte, error)

	// Name returns the backend name used by -format
	Name() string
}

type JSONBackend struct{}

func (JSONBackend) Name() string                      { return "json" }
func (JSONBackend) Emit(defs ir.Defs) ([]byte, error) { return ir.EncodeJSON(defs) }

type YAMLBackend struct{}

func (YAMLBackend) Name() string                      { return "yaml" }
func (YAMLBackend) Emit(defs ir.Defs) ([]byte, error) { return ir.EncodeYAML(defs) }

type ProtoBackend struct{}

func (ProtoBackend) Name() string                      { return "proto" }
func (ProtoBackend) Emit(defs ir.Defs) ([]byte, error) { return ir.EncodeProto(defs) }

// TextBackend writes the human-readable listing.
type TextBackend struct{}

func (TextBackend) Name() string { return "text" }
func (TextBackend) Emit(defs ir.Defs) ([]byte, error) {
	return []byte(prettyprinter.PrintDefs(defs)), nil
}

var backends = map[string]Backend{
	"json":  JSONBackend{},
	"yaml":  YAMLBackend{},
	"proto": ProtoBackend{},
	"text":  TextBackend{},
}

// ByName looks up a backend. The empty name selects JSON.
func ByName(name string) (Backend, error) {
	if name == "" {
		name = "json"
	}
	b, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (want one of %v)", name, Names())
	}
	return b, nil
}

// Names lists the registered formats.
func Names() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Decode parses output of the named backend back into a table. The text
// listing is not decodable.
func Decode(name string, data []byte) (ir.Defs, error) {
	switch name {
	case "", "json":
		return ir.DecodeJSON(data)
	case "yaml":
		return ir.DecodeYAML(data)
	case "proto":
		return ir.DecodeProto(data)
	}
	return nil, fmt.Errorf("format %q cannot be decoded", name)
}
