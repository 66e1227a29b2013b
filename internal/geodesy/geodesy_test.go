package geodesy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Datum shift published for the Narathiwat survey sheets.
var testShift = &DatumShift{Dx: 204.5, Dy: 837.9, Dz: 294.8}

func TestUTMTargetTable(t *testing.T) {
	tests := []struct {
		src, want int
	}{
		{24047, 32647},
		{32647, 32647},
		{24048, 32648},
		{32648, 32648},
		{4326, 4326},
		{3857, 3857},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UTMTarget(tt.src))
	}
}

func TestSourceCRS(t *testing.T) {
	f := NewFactory(testShift)

	c, err := f.SourceCRS(24047)
	require.NoError(t, err)
	assert.Equal(t, 47, c.Zone)
	assert.Equal(t, Everest1937, c.Spheroid)
	assert.Equal(t, testShift, c.Shift)
	assert.Contains(t, c.Proj4(), "+towgs84=204.5,837.9,294.8")

	c, err = f.SourceCRS(32648)
	require.NoError(t, err)
	assert.Equal(t, 48, c.Zone)
	assert.Equal(t, WGS84Spheroid, c.Spheroid)
	assert.Nil(t, c.Shift)

	_, err = f.SourceCRS(9999)
	assert.Error(t, err)
}

func TestToWGS84LandsInThailand(t *testing.T) {
	f := NewFactory(testShift)
	tr, err := f.ToWGS84(24047)
	require.NoError(t, err)

	lon, lat := tr.Transform(810293.807, 711042.723)
	assert.Greater(t, lon, 97.0)
	assert.Less(t, lon, 106.0)
	assert.Greater(t, lat, 5.0)
	assert.Less(t, lat, 21.0)
}

func TestWGS84UTMRoundTrip(t *testing.T) {
	// Forward then inverse on the WGS84 spheroid must reproduce the
	// input to well below survey precision.
	e, n := 810293.807, 711042.723
	lat, lon := utmInverse(WGS84Spheroid, 47, e, n)
	e2, n2 := utmForward(WGS84Spheroid, 47, lat, lon)
	assert.InDelta(t, e, e2, 1e-3)
	assert.InDelta(t, n, n2, 1e-3)
}

func TestToUTMAppliesDatumShift(t *testing.T) {
	f := NewFactory(testShift)
	tr, target, err := f.ToUTM(24047)
	require.NoError(t, err)
	assert.Equal(t, 32647, target)

	e, n := 810293.807, 711042.723
	x, y := tr.Transform(e, n)

	// The datum shift moves points by hundreds of meters, not by
	// kilometers and not by nothing.
	d := math.Hypot(x-e, y-n)
	assert.Greater(t, d, 50.0)
	assert.Less(t, d, 2000.0)
}

func TestToUTMIdentityForWGS84Sources(t *testing.T) {
	f := NewFactory(testShift)

	tr, target, err := f.ToUTM(32647)
	require.NoError(t, err)
	assert.Equal(t, 32647, target)
	x, y := tr.Transform(810293.807, 711042.723)
	assert.Equal(t, 810293.807, x)
	assert.Equal(t, 711042.723, y)

	// Unknown codes pass through with their own code.
	tr, target, err = f.ToUTM(3857)
	require.NoError(t, err)
	assert.Equal(t, 3857, target)
	x, y = tr.Transform(1.5, 2.5)
	assert.Equal(t, 1.5, x)
	assert.Equal(t, 2.5, y)
}

func TestTransformerCaching(t *testing.T) {
	f := NewFactory(testShift)

	tr1, err := f.ToWGS84(24047)
	require.NoError(t, err)
	tr2, err := f.ToWGS84(24047)
	require.NoError(t, err)

	lon1, lat1 := tr1.Transform(810293.807, 711042.723)
	lon2, lat2 := tr2.Transform(810293.807, 711042.723)
	assert.Equal(t, lon1, lon2)
	assert.Equal(t, lat1, lat2)
	assert.Equal(t, 1, f.builds, "second request must reuse the cached transformer")

	_, _, err = f.ToUTM(24047)
	require.NoError(t, err)
	_, _, err = f.ToUTM(24047)
	require.NoError(t, err)
	assert.Equal(t, 2, f.builds)
}

func TestGeocentricRoundTrip(t *testing.T) {
	lat := 6.4 * math.Pi / 180
	lon := 101.8 * math.Pi / 180
	x, y, z := Everest1937.toGeocentric(lat, lon)
	lat2, lon2 := Everest1937.toGeodetic(x, y, z)
	assert.InDelta(t, lat, lat2, 1e-12)
	assert.InDelta(t, lon, lon2, 1e-12)
}
