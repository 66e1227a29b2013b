// Package geometry computes parcel area, traditional Thai area units,
// and label placement for survey boundaries.
package geometry

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Area returns the absolute polygon area of a boundary ring via the
// shoelace formula. The ring is treated as cyclic, so it works the same
// whether or not the caller appended a closing duplicate vertex.
func Area(ring orb.Ring) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := range ring {
		prev := ring[(i+n-1)%n]
		sum += ring[i][0]*prev[1] - ring[i][1]*prev[0]
	}
	return 0.5 * math.Abs(sum)
}

// RaiNganWah converts an area in square meters to the traditional
// rai-ngan-square wah notation used on Thai deeds. 1 square wah = 4 m²,
// 1 ngan = 100 square wah, 1 rai = 4 ngan.
func RaiNganWah(sqm float64) string {
	sqWah := sqm / 4.0
	rai := int(sqWah / 400)
	rem := math.Mod(sqWah, 400)
	ngan := int(rem / 100)
	wah := rem - float64(ngan)*100
	return fmt.Sprintf("%d-%d-%.1f", rai, ngan, wah)
}

// Centroid returns the arithmetic mean of the ring vertices. This is a
// label anchor, not the true area-weighted centroid.
func Centroid(ring orb.Ring) orb.Point {
	if len(ring) == 0 {
		return orb.Point{}
	}
	var sx, sy float64
	for _, p := range ring {
		sx += p[0]
		sy += p[1]
	}
	n := float64(len(ring))
	return orb.Point{sx / n, sy / n}
}
