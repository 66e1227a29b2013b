package geodesy

import "math"

// Universal Transverse Mercator constants (northern hemisphere).
const (
	utmScale        = 0.9996
	utmFalseEasting = 500000.0
)

// zoneCentralMeridian returns the central meridian of a UTM zone in
// radians.
func zoneCentralMeridian(zone int) float64 {
	return float64(zone*6-183) * math.Pi / 180
}

// meridionalArc returns the distance along the meridian from the
// equator to the given latitude (radians) on the spheroid.
func meridionalArc(s Spheroid, lat float64) float64 {
	e2 := s.E2()
	e4 := e2 * e2
	e6 := e4 * e2
	return s.A * ((1-e2/4-3*e4/64-5*e6/256)*lat -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*lat) +
		(15*e4/256+45*e6/1024)*math.Sin(4*lat) -
		(35*e6/3072)*math.Sin(6*lat))
}

// utmForward projects geodetic latitude/longitude (radians) onto UTM
// easting/northing for the given zone, using the standard series
// expansion (Snyder, Map Projections: A Working Manual, eq. 8-9..8-13).
func utmForward(s Spheroid, zone int, lat, lon float64) (easting, northing float64) {
	e2 := s.E2()
	ep2 := e2 / (1 - e2)

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	tanLat := math.Tan(lat)

	n := s.A / math.Sqrt(1-e2*sinLat*sinLat)
	t := tanLat * tanLat
	c := ep2 * cosLat * cosLat
	a := (lon - zoneCentralMeridian(zone)) * cosLat

	m := meridionalArc(s, lat)

	easting = utmFalseEasting + utmScale*n*(a+
		(1-t+c)*a*a*a/6+
		(5-18*t+t*t+72*c-58*ep2)*math.Pow(a, 5)/120)
	northing = utmScale * (m + n*tanLat*(a*a/2+
		(5-t+9*c+4*c*c)*math.Pow(a, 4)/24+
		(61-58*t+t*t+600*c-330*ep2)*math.Pow(a, 6)/720))
	return easting, northing
}

// utmInverse unprojects UTM easting/northing for the given zone back to
// geodetic latitude/longitude in radians.
func utmInverse(s Spheroid, zone int, easting, northing float64) (lat, lon float64) {
	e2 := s.E2()
	ep2 := e2 / (1 - e2)
	e4 := e2 * e2
	e6 := e4 * e2

	m := northing / utmScale
	mu := m / (s.A * (1 - e2/4 - 3*e4/64 - 5*e6/256))

	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
	phi1 := mu +
		(3*e1/2-27*math.Pow(e1, 3)/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*math.Pow(e1, 4)/32)*math.Sin(4*mu) +
		(151*math.Pow(e1, 3)/96)*math.Sin(6*mu) +
		(1097*math.Pow(e1, 4)/512)*math.Sin(8*mu)

	sinPhi1 := math.Sin(phi1)
	cosPhi1 := math.Cos(phi1)
	tanPhi1 := math.Tan(phi1)

	c1 := ep2 * cosPhi1 * cosPhi1
	t1 := tanPhi1 * tanPhi1
	n1 := s.A / math.Sqrt(1-e2*sinPhi1*sinPhi1)
	r1 := s.A * (1 - e2) / math.Pow(1-e2*sinPhi1*sinPhi1, 1.5)
	d := (easting - utmFalseEasting) / (n1 * utmScale)

	lat = phi1 - (n1*tanPhi1/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*math.Pow(d, 4)/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*math.Pow(d, 6)/720)
	lon = zoneCentralMeridian(zone) + (d-
		(1+2*t1+c1)*d*d*d/6+
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*math.Pow(d, 5)/120)/cosPhi1
	return lat, lon
}
