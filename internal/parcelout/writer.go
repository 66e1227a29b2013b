// Package parcelout writes the per-run geospatial containers: one
// GeoJSON file per coordinate system, each holding a marker point
// layer and a parcel polygon layer for every source deed.
package parcelout

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/chanot/cadastre/internal/deed"
	"github.com/chanot/cadastre/internal/geometry"
)

// Container is a multi-layer GeoJSON document. Layers are named
// marker:<file> and parcel:<file> after the deed they came from.
type Container struct {
	CRS    *crsMember                            `json:"crs,omitempty"`
	Layers map[string]*geojson.FeatureCollection `json:"layers"`
}

type crsMember struct {
	Type       string        `json:"type"`
	Properties crsProperties `json:"properties"`
}

type crsProperties struct {
	Name string `json:"name"`
}

// ModalEPSG returns the most common EPSG code among the parcels. Ties
// break toward the lower code so the result is deterministic.
func ModalEPSG(parcels []*deed.Parcel) int {
	counts := map[int]int{}
	for _, p := range parcels {
		counts[p.EPSG]++
	}
	best, bestN := 0, 0
	for code, n := range counts {
		if n > bestN || (n == bestN && code < best) {
			best, bestN = code, n
		}
	}
	return best
}

// Build assembles the container for a set of parcels. The container's
// declared CRS is the modal EPSG code; parcels in a minority CRS are
// still included, carrying their own code in feature properties.
func Build(parcels []*deed.Parcel) *Container {
	c := &Container{Layers: map[string]*geojson.FeatureCollection{}}
	if epsg := ModalEPSG(parcels); epsg != 0 && epsg != 4326 {
		c.CRS = &crsMember{
			Type:       "name",
			Properties: crsProperties{Name: fmt.Sprintf("urn:ogc:def:crs:EPSG::%d", epsg)},
		}
	}

	for _, p := range parcels {
		c.Layers["marker:"+p.SourceFile] = markerLayer(p)
		if layer := parcelLayer(p); layer != nil {
			c.Layers["parcel:"+p.SourceFile] = layer
		}
	}
	return c
}

func markerLayer(p *deed.Parcel) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range p.Markers {
		f := geojson.NewFeature(orb.Point{m.Easting, m.Northing})
		f.Properties = geojson.Properties{
			"sequence": m.Sequence,
			"label":    m.Label,
			"name":     m.Name,
			"northing": m.Northing,
			"easting":  m.Easting,
			"epsg":     p.EPSG,
		}
		fc.Append(f)
	}
	return fc
}

func parcelLayer(p *deed.Parcel) *geojson.FeatureCollection {
	ring := p.Ring()
	if len(ring) < 3 {
		return nil
	}
	area := geometry.Area(ring)
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}

	f := geojson.NewFeature(orb.Polygon{ring})
	f.Properties = geojson.Properties{
		"file":     p.SourceFile,
		"epsg":     p.EPSG,
		"area_sqm": area,
		"area_rnw": geometry.RaiNganWah(area),
	}

	fc := geojson.NewFeatureCollection()
	fc.Append(f)
	return fc
}

// LayerNames lists the container's layers in sorted order.
func (c *Container) LayerNames() []string {
	names := make([]string, 0, len(c.Layers))
	for name := range c.Layers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Write renders the container for parcels and writes it to path.
func Write(path string, parcels []*deed.Parcel) error {
	c := Build(parcels)
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	slog.Info("wrote parcel container", "path", path,
		"layers", len(c.Layers), "epsg", ModalEPSG(parcels))
	return nil
}

// Read loads a container back from disk.
func Read(path string) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Container
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &c, nil
}
