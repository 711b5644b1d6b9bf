package tonclient

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// ErrNoCode is returned when a code image carries no code cell.
var ErrNoCode = errors.New("code image has no code cell")

// LoadStateInit parses a base64 encoded code image into its StateInit.
func LoadStateInit(tvc string) (*tlb.StateInit, error) {
	raw, err := base64.StdEncoding.DecodeString(tvc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode code image: %w", err)
	}

	root, err := cell.FromBOC(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse code image boc: %w", err)
	}

	var si tlb.StateInit
	if err = tlb.LoadFromCell(&si, root.BeginParse()); err != nil {
		return nil, fmt.Errorf("failed to load state init: %w", err)
	}

	return &si, nil
}

// CodeFromTVC returns the base64 encoded BOC of the code cell of a code image.
func CodeFromTVC(tvc string) (string, error) {
	si, err := LoadStateInit(tvc)
	if err != nil {
		return "", err
	}
	if si.Code == nil {
		return "", ErrNoCode
	}

	return base64.StdEncoding.EncodeToString(si.Code.ToBOC()), nil
}
