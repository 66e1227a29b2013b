// Package batch runs the deed pipeline over a working folder: OCR
// table extraction into staged records, then geodetic transformation
// of verified records into final records and parcel containers.
package batch

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chanot/cadastre/internal/config"
	"github.com/chanot/cadastre/internal/deed"
	"github.com/chanot/cadastre/internal/extract"
	"github.com/chanot/cadastre/internal/geodesy"
	"github.com/chanot/cadastre/internal/geometry"
	"github.com/chanot/cadastre/internal/parcelout"
	"github.com/chanot/cadastre/internal/record"
)

// Summary reports what a run touched.
type Summary struct {
	Processed int
	Skipped   []string
	Duration  time.Duration
}

// Runner ties the pipeline stages to one working folder's
// configuration.
type Runner struct {
	cfg       *config.Config
	store     *record.Store
	extractor *extract.Extractor
}

func NewRunner(cfg *config.Config) *Runner {
	return &Runner{
		cfg:       cfg,
		store:     record.NewStore(cfg),
		extractor: extract.New(cfg.ColumnSpec),
	}
}

// RunExtract extracts marker tables from the OCR markup of every
// selected document under root and stages the results as raw records.
// rangeSpec is an optional 1-based "start,end" selection over the
// sorted document list. Documents whose markup yields no usable table
// are skipped, not fatal.
func (r *Runner) RunExtract(root, rangeSpec string) (*Summary, error) {
	started := time.Now()

	docs, err := DiscoverDocuments(root)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, errors.New("no table images found")
	}

	start, end, err := ParseRange(rangeSpec, len(docs))
	if err != nil {
		return nil, err
	}

	sum := &Summary{}
	for _, doc := range docs[start-1 : end] {
		if err := r.extractOne(doc, sum); err != nil {
			return nil, err
		}
	}
	sum.Duration = time.Since(started)
	slog.Info("extraction finished", "processed", sum.Processed,
		"skipped", len(sum.Skipped), "duration", sum.Duration)
	return sum, nil
}

func (r *Runner) extractOne(doc Document, sum *Summary) error {
	source := filepath.Base(doc.TableImage)

	if len(doc.Markups) == 0 {
		slog.Warn("no OCR markup for table image", "image", doc.TableImage)
		sum.Skipped = append(sum.Skipped, source)
		return nil
	}

	// A deed's marker table can span several OCR regions; each markup
	// file holds one region's rows, in region order.
	var verts []deed.Vertex
	for _, markup := range doc.Markups {
		data, err := os.ReadFile(markup)
		if err != nil {
			slog.Warn("unreadable OCR markup", "path", markup, "reason", err)
			continue
		}
		part, err := r.extractor.Extract(data)
		if err != nil {
			slog.Warn("unusable OCR markup", "path", markup, "reason", err)
			continue
		}
		verts = append(verts, part...)
	}
	if len(verts) == 0 {
		slog.Warn("skipping document without usable markers", "image", doc.TableImage)
		sum.Skipped = append(sum.Skipped, source)
		return nil
	}

	p := deed.NewParcel(source, r.cfg.EPSG, verts)
	path, err := r.store.Write(record.StageRaw, doc.Base(), p)
	if err != nil {
		return err
	}
	slog.Info("staged raw record", "path", path,
		"markers", len(p.Markers), "closed", p.Closed)
	sum.Processed++
	return nil
}

// RunTransform reads every verified record under root, transforms its
// markers to the WGS84 UTM target of its source system, stages the
// final records, and writes the two parcel containers: prefix_I75UTM
// with the source coordinates and prefix_W84UTM with the transformed
// ones.
func (r *Runner) RunTransform(root, prefix string) (*Summary, error) {
	started := time.Now()

	bases, err := record.Discover(root)
	if err != nil {
		return nil, err
	}
	if len(bases) == 0 {
		return nil, errors.New("no staged records found")
	}

	factory := geodesy.NewFactory(r.datumShift())
	sum := &Summary{}
	var sources, finals []*deed.Parcel

	for _, base := range bases {
		src, err := r.store.Read(record.StageVerified, base)
		if err != nil {
			// Hand-edited stage files break; the rest of the batch
			// must not pay for it.
			slog.Warn("skipping record", "base", base, "reason", err)
			sum.Skipped = append(sum.Skipped, filepath.Base(base)+"_table.jpg")
			continue
		}

		final, err := r.transformOne(factory, src)
		if err != nil {
			slog.Warn("skipping record", "base", base, "reason", err)
			sum.Skipped = append(sum.Skipped, src.SourceFile)
			continue
		}

		path, err := r.store.Write(record.StageFinal, base, final)
		if err != nil {
			return nil, err
		}
		slog.Info("staged final record", "path", path, "epsg", final.EPSG)

		sources = append(sources, src)
		finals = append(finals, final)
		sum.Processed++
	}

	if len(finals) == 0 {
		return nil, errors.New("no records transformed")
	}

	if err := parcelout.Write(filepath.Join(root, prefix+"_I75UTM.geojson"), sources); err != nil {
		return nil, err
	}
	if err := parcelout.Write(filepath.Join(root, prefix+"_W84UTM.geojson"), finals); err != nil {
		return nil, err
	}

	sum.Duration = time.Since(started)
	slog.Info("transformation finished", "processed", sum.Processed,
		"skipped", len(sum.Skipped), "duration", sum.Duration)
	return sum, nil
}

func (r *Runner) transformOne(factory *geodesy.Factory, src *deed.Parcel) (*deed.Parcel, error) {
	tr, target, err := factory.ToUTM(src.EPSG)
	if err != nil {
		return nil, err
	}

	final := &deed.Parcel{
		SourceFile: src.SourceFile,
		EPSG:       target,
		Closed:     src.Closed,
		Markers:    make([]deed.Marker, len(src.Markers)),
	}
	for i, m := range src.Markers {
		e, n := tr.Transform(m.Easting, m.Northing)
		m.Easting, m.Northing = e, n
		final.Markers[i] = m
	}

	r.logGeographic(factory, src)

	if ring := final.Ring(); len(ring) >= 3 {
		area := geometry.Area(ring)
		slog.Info("parcel geometry", "file", src.SourceFile,
			"area_sqm", area, "area_rnw", geometry.RaiNganWah(area),
			"closed", final.Closed)
	}
	return final, nil
}

// logGeographic reports the parcel's location in plain latitude and
// longitude, which is what reviewers paste into a map.
func (r *Runner) logGeographic(factory *geodesy.Factory, src *deed.Parcel) {
	if len(src.Markers) == 0 {
		return
	}
	tr, err := factory.ToWGS84(src.EPSG)
	if err != nil {
		return
	}
	c := geometry.Centroid(src.Ring())
	lon, lat := tr.Transform(c[0], c[1])
	slog.Info("parcel location", "file", src.SourceFile, "lat", lat, "lon", lon)
}

func (r *Runner) datumShift() *geodesy.DatumShift {
	if len(r.cfg.ToWGS84) != 3 {
		return nil
	}
	return &geodesy.DatumShift{
		Dx: r.cfg.ToWGS84[0],
		Dy: r.cfg.ToWGS84[1],
		Dz: r.cfg.ToWGS84[2],
	}
}
