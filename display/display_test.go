package display

import (
	"bytes"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/clutz/diag"
)

func sample() []diag.Diagnostic {
	return []diag.Diagnostic{
		diag.New(diag.UnresolvableReference, "a.B", "no symbol named Missing"),
		diag.New(diag.UnresolvableReference, "a.C", "no symbol named Other"),
		diag.New(diag.NominalCollision, "p.a_b", "guard renamed"),
	}
}

func TestSummaryRows(t *testing.T) {
	rows := SummaryRows(sample())
	assert.Equal(t, [][]string{
		{"Code", "Severity", "Count"},
		{"NOMINAL_COLLISION", "info", "1"},
		{"UNRESOLVABLE_REFERENCE", "warning", "2"},
	}, rows)
}

func TestPrintDiagnostics(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	var buf bytes.Buffer
	require.NoError(t, PrintDiagnostics(&buf, sample(), false))
	out := buf.String()
	assert.Contains(t, out, "UNRESOLVABLE_REFERENCE")
	assert.Contains(t, out, "NOMINAL_COLLISION")
	assert.NotContains(t, out, "no symbol named Missing")

	buf.Reset()
	require.NoError(t, PrintDiagnostics(&buf, sample(), true))
	assert.Contains(t, buf.String(), "no symbol named Missing")

	buf.Reset()
	require.NoError(t, PrintDiagnostics(&buf, nil, true))
	assert.Contains(t, buf.String(), "No diagnostics")
}

func TestPrintRunSummary(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	var buf bytes.Buffer
	require.NoError(t, PrintRunSummary(&buf, RunSummary{
		Units:       3,
		Emitted:     2,
		Skipped:     []string{"broken"},
		Diagnostics: 1,
		Duration:    1500 * time.Millisecond,
	}))
	out := buf.String()
	assert.Contains(t, out, "Emitted 2 of 3 units in 1.5s with 1 diagnostics")
	assert.Contains(t, out, "skipped broken")
}

func TestMarshalJSONKeepsAngleBrackets(t *testing.T) {
	data, err := MarshalJSON(map[string]string{"type": "Array<string>"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"type\": \"Array<string>\"\n}", string(data))
}

func TestShouldOutputJSON(t *testing.T) {
	root := &cobra.Command{Use: "clutz"}
	root.PersistentFlags().Bool("json", false, "")
	child := &cobra.Command{Use: "show", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(child)

	assert.False(t, ShouldOutputJSON(child))

	require.NoError(t, root.PersistentFlags().Set("json", "true"))
	assert.True(t, ShouldOutputJSON(child))

	t.Setenv("CLUTZ_JSON", "1")
	assert.True(t, ShouldOutputJSON(nil))
}
