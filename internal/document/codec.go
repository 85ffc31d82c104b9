package document

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"mapmark/internal/catalog"
	"mapmark/internal/marker"
)

// FormatVersion is written into every map file. Files with a newer version
// are refused.
const FormatVersion = 1

// Extension of map data files.
const Extension = ".mapmark"

const (
	kindImage  = "image"
	kindMarker = "marker"
)

// mapFile is the on-disk layout: a version and a flat list of tagged
// records, top-most marker first and the background image last.
type mapFile struct {
	Version int      `yaml:"version"`
	Records []record `yaml:"records"`
}

type record struct {
	Kind   string        `yaml:"kind"`
	Image  *imageRecord  `yaml:"image,omitempty"`
	Marker *markerRecord `yaml:"marker,omitempty"`
}

type imageRecord struct {
	Path string `yaml:"path"`
}

type markerRecord struct {
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	Category    string  `yaml:"category"`
	Icon        int     `yaml:"icon"`
	Name        string  `yaml:"name"`
	Visible     bool    `yaml:"visible"`
	Description string  `yaml:"description"`
	Color       string  `yaml:"color"`
}

// Warning describes a marker that could not be restored as saved and was
// given the default icon instead.
type Warning struct {
	Record int
	Name   string
	Reason string
}

func (w Warning) String() string {
	if w.Name == "" {
		return fmt.Sprintf("record %d: %s", w.Record, w.Reason)
	}
	return fmt.Sprintf("record %d (%s): %s", w.Record, w.Name, w.Reason)
}

// Store saves and loads documents, validating marker icons against the
// catalog on load.
type Store struct {
	catalog *catalog.Catalog
	log     zerolog.Logger
}

func NewStore(cat *catalog.Catalog, log zerolog.Logger) *Store {
	return &Store{catalog: cat, log: log}
}

// DefaultFileName names a map saved without an explicit name.
func DefaultFileName(now time.Time) string {
	return now.Format("2006-01-02-15-04") + Extension
}

// CompanionImagePath is where Save writes the background for a data file.
func CompanionImagePath(dataPath string) string {
	p := strings.TrimSuffix(dataPath, filepath.Ext(dataPath)) + ".png"
	if p == dataPath {
		p = dataPath + ".png"
	}
	return p
}

// Save writes the background as a PNG next to path, then the record list to
// path. Existing files are overwritten.
func (s *Store) Save(doc *Document, path string) error {
	if !doc.HasBackground() {
		return ErrNoBackground
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create map directory: %w", err)
		}
	}

	imgPath := CompanionImagePath(path)
	if err := writePNG(imgPath, doc.Background); err != nil {
		return fmt.Errorf("write background: %w", err)
	}

	f := mapFile{
		Version: FormatVersion,
		Records: make([]record, 0, len(doc.Markers)+1),
	}
	for i := len(doc.Markers) - 1; i >= 0; i-- {
		f.Records = append(f.Records, record{Kind: kindMarker, Marker: toRecord(doc.Markers[i])})
	}
	f.Records = append(f.Records, record{Kind: kindImage, Image: &imageRecord{Path: filepath.Base(imgPath)}})

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("encode map: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write map: %w", err)
	}

	doc.BackgroundPath = imgPath
	doc.Dirty = false
	s.log.Info().Str("path", path).Str("image", imgPath).Int("markers", len(doc.Markers)).Msg("map saved")
	return nil
}

// Load reads the map at path into a new Document. Markers whose category or
// icon no longer exists are reset to the default icon and reported as
// warnings; any other problem fails the whole load.
func (s *Store) Load(path string) (*Document, []Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read map: %w", err)
	}

	var f mapFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if f.Version <= 0 {
		return nil, nil, fmt.Errorf("%w: missing version", ErrCorrupt)
	}
	if f.Version > FormatVersion {
		return nil, nil, fmt.Errorf("%w: %d (supported up to %d)", ErrUnsupportedVersion, f.Version, FormatVersion)
	}

	doc := New()
	var warnings []Warning
	images := 0

	// Records are stored top-most first; walking them backwards appends
	// markers bottom-up, which restores the saved stacking.
	for i := len(f.Records) - 1; i >= 0; i-- {
		rec := f.Records[i]
		switch rec.Kind {
		case kindImage:
			if rec.Image == nil || rec.Image.Path == "" {
				return nil, nil, fmt.Errorf("%w: record %d: image without path", ErrCorrupt, i)
			}
			images++
			if images > 1 {
				return nil, nil, fmt.Errorf("%w: more than one image record", ErrCorrupt)
			}
			imgPath := rec.Image.Path
			if !filepath.IsAbs(imgPath) {
				imgPath = filepath.Join(filepath.Dir(path), imgPath)
			}
			img, err := decodeImage(imgPath)
			if err != nil {
				return nil, nil, err
			}
			doc.BackgroundPath = imgPath
			doc.Background = img
		case kindMarker:
			if rec.Marker == nil {
				return nil, nil, fmt.Errorf("%w: record %d: marker without data", ErrCorrupt, i)
			}
			m, warning, err := s.fromRecord(*rec.Marker)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: record %d: %v", ErrCorrupt, i, err)
			}
			if warning != "" {
				w := Warning{Record: i, Name: m.Name, Reason: warning}
				s.log.Warn().Str("path", path).Int("record", i).Str("marker", m.Name).Msg(warning)
				warnings = append(warnings, w)
			}
			doc.Markers = append(doc.Markers, m)
		default:
			return nil, nil, fmt.Errorf("%w: record %d: unknown kind %q", ErrCorrupt, i, rec.Kind)
		}
	}
	if images == 0 {
		return nil, nil, fmt.Errorf("%w: no image record", ErrCorrupt)
	}

	s.log.Info().Str("path", path).Int("markers", len(doc.Markers)).Int("warnings", len(warnings)).Msg("map loaded")
	return doc, warnings, nil
}

func toRecord(m marker.Marker) *markerRecord {
	return &markerRecord{
		X:           m.Position.X,
		Y:           m.Position.Y,
		Category:    m.Category,
		Icon:        m.IconIndex,
		Name:        m.Name,
		Visible:     m.NameVisible,
		Description: m.Description,
		Color:       m.TextColor.Hex(),
	}
}

func (s *Store) fromRecord(r markerRecord) (marker.Marker, string, error) {
	textColor, err := marker.ParseRGB(r.Color)
	if err != nil {
		return marker.Marker{}, "", err
	}
	m := marker.Marker{
		Position:    marker.Point{X: r.X, Y: r.Y},
		Category:    r.Category,
		IconIndex:   r.Icon,
		Name:        r.Name,
		Description: r.Description,
		NameVisible: r.Visible,
		TextColor:   textColor,
	}

	res := s.catalog.Resolve(r.Category, r.Icon)
	m.Category = res.Category
	m.IconIndex = res.Index
	if res.FellBack {
		return m, res.Reason, nil
	}
	return m, "", nil
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}

// IsLoadFailure reports whether err came from a map file that could not be
// restored, as opposed to a plain I/O problem.
func IsLoadFailure(err error) bool {
	return errors.Is(err, ErrCorrupt) ||
		errors.Is(err, ErrUnsupportedVersion) ||
		errors.Is(err, ErrMissingAsset) ||
		errors.Is(err, ErrDecodeImage)
}
