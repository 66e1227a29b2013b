package extract

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var threeCols = []string{"MRK_DOL", "NORTHING", "EASTING"}

func tableMarkup(rows ...[]string) []byte {
	var b strings.Builder
	b.WriteString("<html><body><table>")
	for i, row := range rows {
		tag := "td"
		if i == 0 {
			tag = "th"
		}
		b.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(&b, "<%s>%s</%s>", tag, cell, tag)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table></body></html>")
	return []byte(b.String())
}

func TestExtractNoTable(t *testing.T) {
	e := New(threeCols)
	_, err := e.Extract([]byte("<html><body><p>nothing here</p></body></html>"))
	assert.True(t, errors.Is(err, ErrNoTable))
}

func TestExtractMeterFractionLayout(t *testing.T) {
	// Nine raw columns of which four are ruling-line artifacts, blank
	// in every data row. After the drop the trailing meters/thousandth
	// pairs must still be recognized and reconstructed.
	markup := tableMarkup(
		[]string{"MRK_DOL", "", "", "", "", "N_M", "N_F", "E_M", "E_F"},
		[]string{"s41", "", "", "", "", "711042", "723", "810293", "807"},
		[]string{"s21", "", "", "", "", "711325", "209", "810466", "417"},
	)

	e := New(threeCols)
	verts, err := e.Extract(markup)
	require.NoError(t, err)
	require.Len(t, verts, 2)
	assert.Equal(t, "s41", verts[0].Name)
	assert.InDelta(t, 711042.723, verts[0].Northing, 1e-9)
	assert.InDelta(t, 810293.807, verts[0].Easting, 1e-9)
	assert.InDelta(t, 711325.209, verts[1].Northing, 1e-9)
}

func TestExtractBlankColumnDropToNineColumns(t *testing.T) {
	// Twelve raw columns, three entirely blank. After the drop exactly
	// nine remain and the meters+fraction reconstruction applies.
	header := []string{"h0", "h1", "h2", "h3", "h4", "h5", "h6", "h7", "h8", "h9", "h10", "h11"}
	row := func(name, nm, nf, em, ef string) []string {
		return []string{name, "", "a", "b", "", "c", "d", nm, nf, em, ef, ""}
	}
	markup := tableMarkup(
		header,
		row("s41", "711042", "723", "810293", "807"),
		row("s2O", "711275", "096", "810520", "089"),
	)

	e := New(threeCols)
	verts, err := e.Extract(markup)
	require.NoError(t, err)
	require.Len(t, verts, 2)
	assert.InDelta(t, 711042.723, verts[0].Northing, 1e-9)
	assert.InDelta(t, 810293.807, verts[0].Easting, 1e-9)
	assert.Equal(t, "s20", verts[1].Name, "confusion correction applies to names")
}

func TestExtractDirectLayout(t *testing.T) {
	markup := tableMarkup(
		[]string{"marker", "note", "northing", "easting"},
		[]string{"sI4", "boundary stone", "711 494.218", "810,313.001"},
		[]string{"s23", "", "711488.109", "810300.804"},
	)

	e := New(threeCols)
	verts, err := e.Extract(markup)
	require.NoError(t, err)
	require.Len(t, verts, 2)
	assert.Equal(t, "s14", verts[0].Name)
	assert.InDelta(t, 711494.218, verts[0].Northing, 1e-9)
	assert.InDelta(t, 810313.001, verts[0].Easting, 1e-9)
}

func TestExtractDropsRowsWithBothCoordinatesMissing(t *testing.T) {
	markup := tableMarkup(
		[]string{"marker", "northing", "easting"},
		[]string{"s41", "711042.723", "810293.807"},
		[]string{"smudge", "-", "?"},
		[]string{"s22", "711328.714", ""},
	)

	e := New(threeCols)
	verts, err := e.Extract(markup)
	require.NoError(t, err)
	require.Len(t, verts, 2)
	assert.Equal(t, "s41", verts[0].Name)
	assert.Equal(t, "s22", verts[1].Name)
	assert.True(t, math.IsNaN(verts[1].Easting))
}

func TestExtractRejectsNonNumericCoordinateColumns(t *testing.T) {
	markup := tableMarkup(
		[]string{"marker", "northing", "easting"},
		[]string{"s41", "north side", "east side"},
		[]string{"s42", "hillock", "canal"},
	)

	e := New(threeCols)
	_, err := e.Extract(markup)
	assert.True(t, errors.Is(err, ErrAmbiguousTable))
}

func TestExtractIdempotent(t *testing.T) {
	markup := tableMarkup(
		[]string{"marker", "x", "northing", "easting"},
		[]string{"s41", "", "711042.723", "810293.807"},
		[]string{"s21", "", "711325.209", "810466.417"},
	)

	e := New(threeCols)
	first, err := e.Extract(markup)
	require.NoError(t, err)
	second, err := e.Extract(markup)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtractNormalizesNonBreakingSpace(t *testing.T) {
	markup := tableMarkup(
		[]string{"marker", "northing", "easting"},
		[]string{" s41 ", "711042.723 ", " 810293.807"},
	)

	e := New(threeCols)
	verts, err := e.Extract(markup)
	require.NoError(t, err)
	require.Len(t, verts, 1)
	assert.Equal(t, "s41", verts[0].Name)
	assert.InDelta(t, 711042.723, verts[0].Northing, 1e-9)
}

func TestCleanNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"711,049..218", 711049.218},
		{"711042.723", 711042.723},
		{" 810 293.807 ", 810293.807},
		{"1.2.3", 1.23},
		{"12", 12},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, CleanNumber(tt.in), 1e-9, "input %q", tt.in)
	}

	assert.True(t, math.IsNaN(CleanNumber("")))
	assert.True(t, math.IsNaN(CleanNumber("---")))
	assert.True(t, math.IsNaN(CleanNumber("...")))
}

func TestFormatCoord(t *testing.T) {
	assert.Equal(t, "711042.723", FormatCoord(711042.723))
	assert.Equal(t, "711042.700", FormatCoord(711042.7))
	assert.Equal(t, "", FormatCoord(math.NaN()))
}
