package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/joshuapare/regrun/internal/regtext"
	"github.com/joshuapare/regrun/pkg/types"
)

var valuesReg bool

func init() {
	cmd := newValuesCmd()
	cmd.Flags().BoolVar(&valuesReg, "reg", false, "Output in .reg format")
	rootCmd.AddCommand(cmd)
}

func newValuesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "values <HKLM|HKCU> [subkey]",
		Short: "List all values of a registry key",
		Long: `The values command lists every value of a key in enumeration order.

Example:
  regrun values HKCU Environment
  regrun values HKLM "SYSTEM\CurrentControlSet\Control\Session Manager\Environment" --reg`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValues(args)
		},
	}
}

func runValues(args []string) error {
	root, err := types.ParseRoot(args[0])
	if err != nil {
		return err
	}
	subkey := ""
	if len(args) > 1 {
		subkey = args[1]
	}

	values, err := newComposer().Values(root, subkey)
	if err != nil {
		return fmt.Errorf("failed to get values: %w", err)
	}

	if valuesReg {
		return regtext.ExportValues(os.Stdout, root, subkey, values, regtext.ExportOptions{})
	}
	return outputValuesTable(values)
}

func outputValuesTable(values []types.NamedValue) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return outputValuesPlain(values)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "TYPE", "DATA")
	for _, nv := range values {
		t.Row(displayName(nv.Name), nv.Type.String(), displayData(nv.Value))
	}
	_, err := fmt.Fprintln(os.Stdout, t.Render())
	return err
}

// outputValuesPlain writes tab-separated rows for pipelines.
func outputValuesPlain(values []types.NamedValue) error {
	var b strings.Builder
	b.WriteString("NAME\tTYPE\tDATA\n")
	for _, nv := range values {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", displayName(nv.Name), nv.Type, displayData(nv.Value))
	}
	_, err := os.Stdout.WriteString(b.String())
	return err
}

func displayName(name string) string {
	if name == "" {
		return "(Default)"
	}
	return name
}

// displayData renders a value for humans; payloads without a textual form
// show their size.
func displayData(v types.Value) string {
	if text, ok := v.Text(); ok {
		return text
	}
	switch {
	case v.Type == types.REG_DWORD && len(v.Data) == 4:
		n := binary.LittleEndian.Uint32(v.Data)
		return fmt.Sprintf("0x%08x (%d)", n, n)
	case v.Type == types.REG_QWORD && len(v.Data) == 8:
		n := binary.LittleEndian.Uint64(v.Data)
		return fmt.Sprintf("0x%016x (%d)", n, n)
	default:
		return fmt.Sprintf("<%d bytes>", len(v.Data))
	}
}
