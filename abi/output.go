package abi

import "fmt"

// OutputDecoder decodes the raw output tuple of one function call.
type OutputDecoder struct {
	output  map[string]any
	outputs []Param
}

// NewOutputDecoder returns a decoder for output produced by fn.
func NewOutputDecoder(output map[string]any, fn Function) *OutputDecoder {
	return &OutputDecoder{output: output, outputs: fn.Outputs}
}

// DecodeAll decodes every declared output into a mapping from parameter name to typed value.
func (d *OutputDecoder) DecodeAll() (map[string]any, error) {
	out, err := decodeTuple(d.output, d.outputs, "")
	if err != nil {
		return nil, fmt.Errorf("failed to decode output: %w", err)
	}

	return out, nil
}

// Decode decodes the output like DecodeAll, except that a function with exactly one output
// yields that value directly instead of a one-entry mapping.
func (d *OutputDecoder) Decode() (any, error) {
	out, err := d.DecodeAll()
	if err != nil {
		return nil, err
	}

	if len(out) == 1 {
		for _, v := range out {
			return v, nil
		}
	}

	return out, nil
}
