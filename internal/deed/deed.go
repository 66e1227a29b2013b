// Package deed holds the survey marker and parcel model shared by the
// extraction, transformation, and output stages.
package deed

import (
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
)

// ClosureTolerance is the maximum per-axis distance (in source units)
// at which the first and last marker of a ring are considered the same
// monument.
const ClosureTolerance = 1e-3

// Marker is one vertex of a parcel boundary as surveyed on the deed.
type Marker struct {
	Sequence int     // 1-based position around the polygon
	Label    string  // display code: A-Z, then P27, P28, ...
	Name     string  // boundary-stone code as printed on the document
	Northing float64 // source CRS, meters
	Easting  float64 // source CRS, meters
}

// Vertex is an unnumbered marker candidate as produced by table
// extraction. Either coordinate may be NaN when the OCR cell could not
// be resolved to a number.
type Vertex struct {
	Name     string
	Northing float64
	Easting  float64
}

// Parcel is an ordered marker sequence forming a polygon, tied back to
// the document it came from. Parcels are never mutated after
// construction; coordinate transformation derives new instances.
type Parcel struct {
	SourceFile string
	EPSG       int
	Closed     bool
	Markers    []Marker
}

// SequenceLabel returns the display code for a 1-based marker position:
// letters A-Z for positions 1-26, then P<sequence>.
func SequenceLabel(seq int) string {
	if seq >= 1 && seq <= 26 {
		return string(rune('A' + seq - 1))
	}
	return fmt.Sprintf("P%d", seq)
}

// confusions maps characters the OCR engine routinely misreads in
// boundary-stone codes to the digit actually printed.
var confusions = strings.NewReplacer(
	"O", "0",
	"o", "0",
	"I", "1",
	"i", "1",
	"l", "1",
	"L", "1",
)

// NormalizeName applies the OCR character-confusion correction to a
// marker name. The correction is idempotent.
func NormalizeName(name string) string {
	return strings.TrimSpace(confusions.Replace(name))
}

// NewParcel builds a parcel from extracted vertices. Vertices missing
// either coordinate are dropped, the survivors are numbered and
// labelled in order, and ring closure is detected: when the first and
// last marker coincide within ClosureTolerance and share a name, the
// duplicate terminal marker is removed and the parcel marked closed.
func NewParcel(sourceFile string, epsg int, vertices []Vertex) *Parcel {
	markers := make([]Marker, 0, len(vertices))
	seq := 0
	for _, v := range vertices {
		if math.IsNaN(v.Northing) || math.IsNaN(v.Easting) {
			continue
		}
		seq++
		markers = append(markers, Marker{
			Sequence: seq,
			Label:    SequenceLabel(seq),
			Name:     v.Name,
			Northing: v.Northing,
			Easting:  v.Easting,
		})
	}

	closed, markers := detectClosure(markers)
	return &Parcel{
		SourceFile: sourceFile,
		EPSG:       epsg,
		Closed:     closed,
		Markers:    markers,
	}
}

// detectClosure reports whether the marker ring ends on a duplicate of
// its first monument, and if so strips the duplicate.
func detectClosure(markers []Marker) (bool, []Marker) {
	if len(markers) < 3 {
		return false, markers
	}
	first, last := markers[0], markers[len(markers)-1]
	if first.Name != last.Name {
		return false, markers
	}
	if math.Abs(first.Northing-last.Northing) >= ClosureTolerance ||
		math.Abs(first.Easting-last.Easting) >= ClosureTolerance {
		return false, markers
	}
	return true, markers[:len(markers)-1]
}

// Ring returns the boundary as an open ring of (easting, northing)
// points in marker order.
func (p *Parcel) Ring() orb.Ring {
	ring := make(orb.Ring, 0, len(p.Markers))
	for _, m := range p.Markers {
		ring = append(ring, orb.Point{m.Easting, m.Northing})
	}
	return ring
}
