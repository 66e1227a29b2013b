package geodesy

import (
	"fmt"
	"math"
	"sync"
)

// EPSG codes the pipeline has special knowledge of.
const (
	EPSGIndian1975Zone47 = 24047
	EPSGIndian1975Zone48 = 24048
	EPSGWGS84UTMZone47   = 32647
	EPSGWGS84UTMZone48   = 32648
	EPSGWGS84Geographic  = 4326
)

// CRS is a coordinate reference system definition.
type CRS struct {
	Code     int
	Name     string
	Spheroid Spheroid
	Shift    *DatumShift
	Zone     int // UTM zone; 0 means geographic
}

// Proj4 renders the definition in proj4 notation, for logs and output
// metadata.
func (c *CRS) Proj4() string {
	if c.Zone == 0 {
		return "+proj=longlat +datum=WGS84 +no_defs"
	}
	towgs := ""
	if c.Shift != nil {
		towgs = fmt.Sprintf("+towgs84=%g,%g,%g ", c.Shift.Dx, c.Shift.Dy, c.Shift.Dz)
	}
	return fmt.Sprintf("+proj=utm +zone=%d +a=%g +rf=%g %s+units=m +no_defs",
		c.Zone, c.Spheroid.A, c.Spheroid.RF, towgs)
}

// Transformer converts a coordinate pair from one reference system to
// another. Inputs and outputs are (easting, northing) for projected
// systems and (longitude, latitude) in degrees for geographic ones.
type Transformer interface {
	Transform(x, y float64) (float64, float64)
}

type transformFunc func(x, y float64) (float64, float64)

func (f transformFunc) Transform(x, y float64) (float64, float64) { return f(x, y) }

var identity = transformFunc(func(x, y float64) (float64, float64) { return x, y })

// UTMTarget maps a source EPSG code to the WGS84 UTM code the pipeline
// outputs for it. The two legacy Indian 1975 zones and their WGS84
// equivalents map to the matching WGS84 UTM zone; anything else keeps
// its own code, since no transformation target is defined for it.
func UTMTarget(epsg int) int {
	switch epsg {
	case EPSGIndian1975Zone47, EPSGWGS84UTMZone47:
		return EPSGWGS84UTMZone47
	case EPSGIndian1975Zone48, EPSGWGS84UTMZone48:
		return EPSGWGS84UTMZone48
	default:
		return epsg
	}
}

// Factory constructs and caches CRS definitions and transformers keyed
// by source EPSG code. Construction is idempotent; the cache is guarded
// so concurrent batch variants stay safe.
type Factory struct {
	mu      sync.Mutex
	shift   *DatumShift
	crs     map[int]*CRS
	toWGS84 map[int]Transformer
	toUTM   map[int]Transformer
	builds  int // transformer constructions, for cache verification
}

// NewFactory returns a factory applying the given datum shift to the
// Indian 1975 zones. A nil shift builds the legacy zones from ellipsoid
// parameters alone.
func NewFactory(shift *DatumShift) *Factory {
	return &Factory{
		shift:   shift,
		crs:     make(map[int]*CRS),
		toWGS84: make(map[int]Transformer),
		toUTM:   make(map[int]Transformer),
	}
}

// SourceCRS returns the definition for a source EPSG code. The two
// Indian 1975 zones are built from explicit ellipsoid and datum-shift
// parameters; the registry defaults for them do not match the datum the
// historical surveys actually used.
func (f *Factory) SourceCRS(epsg int) (*CRS, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sourceCRSLocked(epsg)
}

func (f *Factory) sourceCRSLocked(epsg int) (*CRS, error) {
	if c, ok := f.crs[epsg]; ok {
		return c, nil
	}

	var c *CRS
	switch epsg {
	case EPSGIndian1975Zone47, EPSGIndian1975Zone48:
		zone := 47
		if epsg == EPSGIndian1975Zone48 {
			zone = 48
		}
		c = &CRS{
			Code:     epsg,
			Name:     fmt.Sprintf("Indian 1975 / UTM zone %d", zone),
			Spheroid: Everest1937,
			Shift:    f.shift,
			Zone:     zone,
		}
	case EPSGWGS84UTMZone47, EPSGWGS84UTMZone48:
		zone := 47
		if epsg == EPSGWGS84UTMZone48 {
			zone = 48
		}
		c = &CRS{
			Code:     epsg,
			Name:     fmt.Sprintf("WGS 84 / UTM zone %dN", zone),
			Spheroid: WGS84Spheroid,
			Zone:     zone,
		}
	case EPSGWGS84Geographic:
		c = &CRS{Code: epsg, Name: "WGS 84", Spheroid: WGS84Spheroid}
	default:
		return nil, fmt.Errorf("unsupported source CRS: EPSG:%d", epsg)
	}

	f.crs[epsg] = c
	return c, nil
}

// ToWGS84 returns the cached transformer from the source system to
// geographic WGS84 (longitude, latitude in degrees).
func (f *Factory) ToWGS84(epsg int) (Transformer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if t, ok := f.toWGS84[epsg]; ok {
		return t, nil
	}

	src, err := f.sourceCRSLocked(epsg)
	if err != nil {
		return nil, err
	}

	f.builds++
	var t Transformer
	if src.Zone == 0 {
		t = identity
	} else {
		sph, shift, zone := src.Spheroid, src.Shift, src.Zone
		t = transformFunc(func(e, n float64) (float64, float64) {
			lat, lon := utmInverse(sph, zone, e, n)
			lat, lon = shiftGeodetic(sph, shift, lat, lon)
			return lon * 180 / math.Pi, lat * 180 / math.Pi
		})
	}
	f.toWGS84[epsg] = t
	return t, nil
}

// ToUTM returns the cached transformer from the source system to its
// WGS84 UTM target, along with the target EPSG code. Codes outside the
// fixed mapping table get an identity transformer and keep their code.
func (f *Factory) ToUTM(epsg int) (Transformer, int, error) {
	target := UTMTarget(epsg)

	f.mu.Lock()
	defer f.mu.Unlock()

	if t, ok := f.toUTM[epsg]; ok {
		return t, target, nil
	}

	if target == epsg && epsg != EPSGWGS84UTMZone47 && epsg != EPSGWGS84UTMZone48 {
		f.toUTM[epsg] = identity
		return identity, target, nil
	}

	src, err := f.sourceCRSLocked(epsg)
	if err != nil {
		return nil, 0, err
	}

	f.builds++
	var t Transformer
	if src.Spheroid == WGS84Spheroid && src.Shift == nil {
		// Already WGS84 UTM in the target zone.
		t = identity
	} else {
		sph, shift, srcZone := src.Spheroid, src.Shift, src.Zone
		dstZone := 47
		if target == EPSGWGS84UTMZone48 {
			dstZone = 48
		}
		t = transformFunc(func(e, n float64) (float64, float64) {
			lat, lon := utmInverse(sph, srcZone, e, n)
			lat, lon = shiftGeodetic(sph, shift, lat, lon)
			return utmForward(WGS84Spheroid, dstZone, lat, lon)
		})
	}
	f.toUTM[epsg] = t
	return t, target, nil
}
