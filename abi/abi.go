// Package abi models contract ABI schemas and decodes raw execution output into typed values.
//
// An ABI is loaded once per contract and is read-only afterwards. Parameter types are kept as
// declared strings and parsed into a [Type] when a value is decoded, so an ABI that declares types
// outside the decoded set still loads.
package abi

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
)

var (
	// ErrSchemaMismatch is returned when a raw value does not match its declared schema, e.g. a
	// declared field is missing from the raw output.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrUnknownType is returned when a declared type is outside the supported type set. It always
	// wraps ErrSchemaMismatch.
	ErrUnknownType = errors.New("unknown type")
	// ErrFunctionNotFound is returned when a function name is not declared by the ABI.
	ErrFunctionNotFound = errors.New("function not found")
	// ErrDuplicateFunction is returned when an ABI declares the same function name twice.
	ErrDuplicateFunction = errors.New("duplicate function")
)

// Param is a named and typed function input, output, event field or tuple component.
type Param struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Components []Param `json:"components,omitempty"`
}

// Function is a callable contract function.
type Function struct {
	Name    string  `json:"name"`
	ID      string  `json:"id,omitempty"`
	Inputs  []Param `json:"inputs"`
	Outputs []Param `json:"outputs"`
}

// HasInput reports whether the function declares an input parameter with the given name.
func (f Function) HasInput(name string) bool {
	for _, in := range f.Inputs {
		if in.Name == name {
			return true
		}
	}

	return false
}

// Event is a contract event. Events are emitted as external outbound messages.
type Event struct {
	Name   string  `json:"name"`
	ID     string  `json:"id,omitempty"`
	Inputs []Param `json:"inputs"`
}

// DataField is a static (initial data) variable of the contract.
type DataField struct {
	Key  int    `json:"key"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// document is the on-disk JSON shape of an ABI.
type document struct {
	ABIVersion int         `json:"ABI version"`
	Version    string      `json:"version,omitempty"`
	Header     []string    `json:"header,omitempty"`
	Functions  []Function  `json:"functions"`
	Events     []Event     `json:"events"`
	Data       []DataField `json:"data"`
}

// ABI is an immutable contract schema. It keeps the raw JSON document so it can be handed to the
// network collaborator unchanged.
type ABI struct {
	doc   document
	index map[string]int
	raw   json.RawMessage
}

// Parse parses an ABI JSON document.
func Parse(data []byte) (*ABI, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse abi: %w", err)
	}

	index := make(map[string]int, len(doc.Functions))
	for i, fn := range doc.Functions {
		if _, ok := index[fn.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateFunction, fn.Name)
		}
		index[fn.Name] = i
	}

	raw := make(json.RawMessage, len(data))
	copy(raw, data)

	return &ABI{doc: doc, index: index, raw: raw}, nil
}

// MustParse is like Parse but panics on error. Intended for embedded ABIs.
func MustParse(data []byte) *ABI {
	a, err := Parse(data)
	if err != nil {
		panic(err)
	}

	return a
}

// Load reads and parses an ABI JSON file.
func Load(path string) (*ABI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read abi file %s: %w", path, err)
	}

	return Parse(data)
}

// Function returns the function declared under name.
func (a *ABI) Function(name string) (Function, error) {
	i, ok := a.index[name]
	if !ok {
		return Function{}, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}

	return a.doc.Functions[i], nil
}

// Functions returns the declared functions in schema order.
func (a *ABI) Functions() []Function {
	out := make([]Function, len(a.doc.Functions))
	copy(out, a.doc.Functions)

	return out
}

// Events returns the declared events in schema order.
func (a *ABI) Events() []Event {
	out := make([]Event, len(a.doc.Events))
	copy(out, a.doc.Events)

	return out
}

// Data returns the declared static variables.
func (a *ABI) Data() []DataField {
	out := make([]DataField, len(a.doc.Data))
	copy(out, a.doc.Data)

	return out
}

// Header returns the declared message header fields.
func (a *ABI) Header() []string {
	out := make([]string, len(a.doc.Header))
	copy(out, a.doc.Header)

	return out
}

// Version returns the ABI version. The "version" string takes precedence over the legacy
// integer "ABI version" field.
func (a *ABI) Version() (*semver.Version, error) {
	if a.doc.Version != "" {
		v, err := semver.NewVersion(a.doc.Version)
		if err != nil {
			return nil, fmt.Errorf("invalid abi version %q: %w", a.doc.Version, err)
		}

		return v, nil
	}
	if a.doc.ABIVersion <= 0 {
		return nil, errors.New("abi version is not declared")
	}

	return semver.New(uint64(a.doc.ABIVersion), 0, 0, "", ""), nil
}

// MarshalJSON returns the original ABI document.
func (a *ABI) MarshalJSON() ([]byte, error) {
	return a.raw, nil
}
