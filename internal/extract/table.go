// Package extract turns raw OCR table markup into clean survey marker
// vertices.
package extract

import (
	"errors"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/net/html"

	"github.com/chanot/cadastre/internal/deed"
)

var (
	// ErrNoTable reports markup without any table. Recoverable: the
	// batch continues with the next document.
	ErrNoTable = errors.New("no table found in markup")

	// ErrAmbiguousTable reports a table whose candidate coordinate
	// columns do not look numeric, so field assignment would be a
	// guess. Recoverable.
	ErrAmbiguousTable = errors.New("cannot identify coordinate columns")
)

// Extractor parses OCR table markup according to a configured column
// specification (3 fields for marker/northing/easting, 5 when sequence
// and label are explicit).
type Extractor struct {
	columns []string
}

// New returns an extractor for the given column specification.
func New(columns []string) *Extractor {
	return &Extractor{columns: columns}
}

// Extract parses the first table in the markup and returns one vertex
// per usable row. Vertices keep NaN for a coordinate whose cell could
// not be resolved; rows where both coordinates are unresolvable are
// dropped.
func (e *Extractor) Extract(markup []byte) ([]deed.Vertex, error) {
	rows, err := parseFirstTable(markup)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		// Header only, or nothing.
		return nil, nil
	}

	e.checkHeader(rows[0])

	// The first row is the printed column header; the rest is data.
	data := dropBlankColumns(padRows(rows[1:]))
	if len(data) == 0 || len(data[0]) < 3 {
		return nil, ErrAmbiguousTable
	}

	var verts []deed.Vertex
	switch w := len(data[0]); {
	case w == 9:
		// The full deed layout survived the blank-column drop: name at
		// 0, coordinates split into meters and thousandths at 5-8.
		verts, err = meterFractionRows(data, 5)
	case w >= 5 && splitEncodingLikely(data, w-4):
		// The drop removed spurious columns from inside the layout but
		// the trailing meters/fraction pairs are still recognizable.
		verts, err = meterFractionRows(data, w-4)
	default:
		verts, err = directRows(data)
	}
	if err != nil {
		return nil, err
	}

	out := verts[:0]
	for _, v := range verts {
		if math.IsNaN(v.Northing) && math.IsNaN(v.Easting) {
			continue
		}
		// Mirror the on-disk 3-decimal precision so later stages see
		// exactly what gets stored.
		v.Northing = roundCoord(v.Northing)
		v.Easting = roundCoord(v.Easting)
		out = append(out, v)
	}
	if len(out) == 0 {
		slog.Debug("table yielded no usable rows")
	}
	return out, nil
}

// checkHeader compares the printed header against the configured
// column names. The OCR engine often mangles header text, so a
// mismatch is logged rather than fatal.
func (e *Extractor) checkHeader(header []string) {
	for _, want := range e.columns {
		found := false
		for _, cell := range header {
			if strings.EqualFold(strings.TrimSpace(cell), want) {
				found = true
				break
			}
		}
		if !found {
			slog.Debug("configured column missing from table header", "column", want)
		}
	}
}

// meterFractionRows handles the split coordinate encoding: name in
// column 0, then starting at the given index four columns holding
// northing meters, northing thousandths, easting meters, easting
// thousandths.
func meterFractionRows(data [][]string, start int) ([]deed.Vertex, error) {
	for idx := start; idx < start+4; idx++ {
		if !columnLooksNumeric(data, idx) {
			return nil, ErrAmbiguousTable
		}
	}
	verts := make([]deed.Vertex, 0, len(data))
	for _, row := range data {
		nm := CleanNumber(row[start])
		nf := CleanNumber(row[start+1])
		em := CleanNumber(row[start+2])
		ef := CleanNumber(row[start+3])
		verts = append(verts, deed.Vertex{
			Name:     deed.NormalizeName(row[0]),
			Northing: nm + nf/1000.0,
			Easting:  em + ef/1000.0,
		})
	}
	return verts, nil
}

// splitEncodingLikely probes whether the four columns starting at the
// given index look like meters/thousandths pairs: all integer-valued,
// fraction columns below 1000, meter columns at least 1000. Without the
// probe a shifted layout would silently mis-assign fields.
func splitEncodingLikely(data [][]string, start int) bool {
	check := func(idx int, meters bool) bool {
		seen := 0
		for _, row := range data {
			if idx >= len(row) || row[idx] == "" {
				continue
			}
			v := CleanNumber(row[idx])
			if math.IsNaN(v) || v != math.Trunc(v) {
				return false
			}
			if meters && v < 1000 {
				return false
			}
			if !meters && v >= 1000 {
				return false
			}
			seen++
		}
		return seen > 0
	}
	return check(start, true) && check(start+1, false) &&
		check(start+2, true) && check(start+3, false)
}

// directRows handles any other layout: name in the first column, the
// two coordinates in the last two.
func directRows(data [][]string) ([]deed.Vertex, error) {
	w := len(data[0])
	if !columnLooksNumeric(data, w-2) || !columnLooksNumeric(data, w-1) {
		return nil, ErrAmbiguousTable
	}
	verts := make([]deed.Vertex, 0, len(data))
	for _, row := range data {
		verts = append(verts, deed.Vertex{
			Name:     deed.NormalizeName(row[0]),
			Northing: CleanNumber(row[w-2]),
			Easting:  CleanNumber(row[w-1]),
		})
	}
	return verts, nil
}

// columnLooksNumeric reports whether at least half of the non-empty
// cells in the column clean to a number. Guards against silently
// mis-assigning fields when the blank-column drop shifted the layout,
// while tolerating the occasional smudged cell.
func columnLooksNumeric(data [][]string, idx int) bool {
	numeric, filled := 0, 0
	for _, row := range data {
		if idx >= len(row) || row[idx] == "" {
			continue
		}
		filled++
		if !math.IsNaN(CleanNumber(row[idx])) {
			numeric++
		}
	}
	if filled == 0 {
		return false
	}
	return numeric*2 >= filled
}

// parseFirstTable walks the markup and collects the cell text of the
// first <table> element, one slice per <tr>.
func parseFirstTable(markup []byte) ([][]string, error) {
	doc, err := html.Parse(strings.NewReader(string(markup)))
	if err != nil {
		return nil, err
	}

	var table *html.Node
	var findTable func(*html.Node)
	findTable = func(n *html.Node) {
		if table != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "table" {
			table = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findTable(c)
		}
	}
	findTable(doc)
	if table == nil {
		return nil, ErrNoTable
	}

	var rows [][]string
	var walkRows func(*html.Node)
	walkRows = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, normalizeCell(innerText(c)))
				}
			}
			rows = append(rows, cells)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walkRows(c)
		}
	}
	walkRows(table)
	return rows, nil
}

// innerText concatenates the text content below a node.
func innerText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// normalizeCell collapses non-breaking spaces and trims the cell.
func normalizeCell(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, " ", " "))
}

// padRows right-pads every row to the widest row so column indexing is
// uniform; OCR rows frequently lose trailing cells.
func padRows(rows [][]string) [][]string {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		padded := make([]string, width)
		copy(padded, r)
		out[i] = padded
	}
	return out
}

// dropBlankColumns removes columns that are empty in every row; ruling
// line misdetection makes the OCR engine insert them. The operation is
// idempotent.
func dropBlankColumns(rows [][]string) [][]string {
	if len(rows) == 0 {
		return rows
	}
	width := len(rows[0])
	keep := make([]int, 0, width)
	for col := 0; col < width; col++ {
		for _, row := range rows {
			if row[col] != "" {
				keep = append(keep, col)
				break
			}
		}
	}
	if len(keep) == width {
		return rows
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		trimmed := make([]string, 0, len(keep))
		for _, col := range keep {
			trimmed = append(trimmed, row[col])
		}
		out[i] = trimmed
	}
	return out
}
