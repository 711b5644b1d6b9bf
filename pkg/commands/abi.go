package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/ton-deployments-kit/abi"
)

// ABI creates the abi command group.
func (c *Commands) ABI() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "abi",
		Short: "ABI commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "describe <file>",
		Short: "Describe the functions, events and data of an ABI file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := abi.Load(args[0])
			if err != nil {
				return err
			}

			describeABI(cmd.OutOrStdout(), a)

			return nil
		},
	})

	return cmd
}

func describeABI(w io.Writer, a *abi.ABI) {
	version := "unknown"
	if v, err := a.Version(); err == nil {
		version = v.String()
	}
	fmt.Fprintf(w, "ABI version: %s\n", version)
	if header := a.Header(); len(header) > 0 {
		fmt.Fprintf(w, "Header: %s\n", strings.Join(header, ", "))
	}

	rows := make([][]string, 0, len(a.Functions())+len(a.Events())+len(a.Data()))
	for _, fn := range a.Functions() {
		rows = append(rows, []string{"function", fn.Name, formatParams(fn.Inputs), formatParams(fn.Outputs)})
	}
	for _, ev := range a.Events() {
		rows = append(rows, []string{"event", ev.Name, formatParams(ev.Inputs), ""})
	}
	for _, d := range a.Data() {
		rows = append(rows, []string{"data", d.Name, d.Type, "key " + strconv.Itoa(d.Key)})
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Kind", "Name", "Inputs", "Outputs"})
	table.AppendBulk(rows)
	table.Render()
}

// formatParams renders params as "name type" pairs, expanding tuple components.
func formatParams(params []abi.Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		typ := p.Type
		if len(p.Components) > 0 {
			typ += "(" + formatParams(p.Components) + ")"
		}
		parts = append(parts, p.Name+" "+typ)
	}

	return strings.Join(parts, ", ")
}
