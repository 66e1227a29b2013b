// Package geodesy builds the coordinate reference systems and
// transformers used to move survey markers between the legacy Indian
// 1975 datum and WGS84/UTM. The projection and datum-shift math is
// implemented directly: only two fixed zone pairs are ever needed, so a
// full projection engine would be dead weight.
package geodesy

import "math"

// Spheroid is a reference ellipsoid given by its semi-major axis in
// meters and inverse flattening.
type Spheroid struct {
	Name string
	A    float64 // semi-major axis
	RF   float64 // inverse flattening 1/f
}

// Everest1937 is the Everest 1830 (1937 Adjustment) ellipsoid underlying
// the Indian 1975 datum used on Thai cadastral sheets.
var Everest1937 = Spheroid{Name: "Everest 1830 (1937 Adjustment)", A: 6377276.345, RF: 300.8017}

// WGS84Spheroid is the WGS84 reference ellipsoid.
var WGS84Spheroid = Spheroid{Name: "WGS 84", A: 6378137.0, RF: 298.257223563}

// F returns the flattening.
func (s Spheroid) F() float64 { return 1 / s.RF }

// E2 returns the first eccentricity squared.
func (s Spheroid) E2() float64 {
	f := s.F()
	return f * (2 - f)
}

// toGeocentric converts geodetic latitude/longitude in radians (height
// zero) to earth-centered cartesian coordinates on the spheroid.
func (s Spheroid) toGeocentric(lat, lon float64) (x, y, z float64) {
	e2 := s.E2()
	sinLat := math.Sin(lat)
	n := s.A / math.Sqrt(1-e2*sinLat*sinLat)
	x = n * math.Cos(lat) * math.Cos(lon)
	y = n * math.Cos(lat) * math.Sin(lon)
	z = n * (1 - e2) * sinLat
	return x, y, z
}

// toGeodetic converts earth-centered cartesian coordinates back to
// geodetic latitude/longitude in radians, iterating on the latitude
// until it stabilizes well below survey precision.
func (s Spheroid) toGeodetic(x, y, z float64) (lat, lon float64) {
	e2 := s.E2()
	p := math.Hypot(x, y)
	lon = math.Atan2(y, x)
	lat = math.Atan2(z, p*(1-e2))
	for i := 0; i < 10; i++ {
		sinLat := math.Sin(lat)
		n := s.A / math.Sqrt(1-e2*sinLat*sinLat)
		next := math.Atan2(z+e2*n*sinLat, p)
		if math.Abs(next-lat) < 1e-14 {
			lat = next
			break
		}
		lat = next
	}
	return lat, lon
}

// DatumShift is the 3-parameter translation aligning a legacy datum's
// geocentric frame with WGS84 (the proj "towgs84" convention: the shift
// is added when moving from the local datum to WGS84).
type DatumShift struct {
	Dx, Dy, Dz float64
}

// shiftGeodetic moves a geodetic position from the given spheroid onto
// WGS84 through the geocentric frame.
func shiftGeodetic(from Spheroid, shift *DatumShift, lat, lon float64) (float64, float64) {
	if shift == nil && from == WGS84Spheroid {
		return lat, lon
	}
	x, y, z := from.toGeocentric(lat, lon)
	if shift != nil {
		x += shift.Dx
		y += shift.Dy
		z += shift.Dz
	}
	return WGS84Spheroid.toGeodetic(x, y, z)
}
