// Package document models one annotated map: a background image plus the
// markers placed on it, and reads and writes it to disk.
package document

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"

	"mapmark/internal/marker"
)

var (
	ErrNoBackground       = errors.New("no background image attached")
	ErrNoMarker           = errors.New("no such marker")
	ErrMissingAsset       = errors.New("missing image asset")
	ErrDecodeImage        = errors.New("cannot decode image")
	ErrCorrupt            = errors.New("corrupt map file")
	ErrUnsupportedVersion = errors.New("unsupported map file version")
)

// Document is a map being annotated. Markers are kept in stacking order:
// index 0 is drawn first, the last marker ends up on top.
type Document struct {
	BackgroundPath string
	Background     image.Image
	Markers        []marker.Marker
	// Dirty reports changes since the last save or load.
	Dirty bool
}

func New() *Document {
	return &Document{Markers: make([]marker.Marker, 0)}
}

// AttachBackground loads the image at path as the map and drops all markers.
func (d *Document) AttachBackground(path string) error {
	img, err := decodeImage(path)
	if err != nil {
		return err
	}
	d.BackgroundPath = path
	d.Background = img
	d.Markers = d.Markers[:0]
	d.Dirty = true
	return nil
}

func (d *Document) HasBackground() bool {
	return d.Background != nil
}

func (d *Document) Bounds() image.Rectangle {
	if d.Background == nil {
		return image.Rectangle{}
	}
	return d.Background.Bounds()
}

// AddMarker places a default marker at pos and returns its index.
func (d *Document) AddMarker(pos marker.Point) (int, error) {
	if !d.HasBackground() {
		return -1, ErrNoBackground
	}
	d.Markers = append(d.Markers, marker.New(pos))
	d.Dirty = true
	return len(d.Markers) - 1, nil
}

func (d *Document) checkIndex(i int) error {
	if i < 0 || i >= len(d.Markers) {
		return fmt.Errorf("%w: %d", ErrNoMarker, i)
	}
	return nil
}

func (d *Document) Marker(i int) (marker.Marker, error) {
	if err := d.checkIndex(i); err != nil {
		return marker.Marker{}, err
	}
	return d.Markers[i], nil
}

// UpdateMarker applies fn to the marker at index i in place.
func (d *Document) UpdateMarker(i int, fn func(*marker.Marker)) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	fn(&d.Markers[i])
	d.Dirty = true
	return nil
}

func (d *Document) MoveMarker(i int, pos marker.Point) error {
	return d.UpdateMarker(i, func(m *marker.Marker) {
		m.Position = pos
	})
}

func (d *Document) RemoveMarker(i int) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.Markers = append(d.Markers[:i], d.Markers[i+1:]...)
	d.Dirty = true
	return nil
}

// RaiseMarker moves the marker at i to the top of the stack and returns its
// new index.
func (d *Document) RaiseMarker(i int) (int, error) {
	if err := d.checkIndex(i); err != nil {
		return -1, err
	}
	last := len(d.Markers) - 1
	if i == last {
		return i, nil
	}
	m := d.Markers[i]
	copy(d.Markers[i:], d.Markers[i+1:])
	d.Markers[last] = m
	d.Dirty = true
	return last, nil
}

// MarkerAt returns the top-most marker whose square of half-width radius
// around its position contains pos, or -1.
func (d *Document) MarkerAt(pos marker.Point, radius float64) int {
	for i := len(d.Markers) - 1; i >= 0; i-- {
		p := d.Markers[i].Position
		if abs(p.X-pos.X) <= radius && abs(p.Y-pos.Y) <= radius {
			return i
		}
	}
	return -1
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingAsset, path)
		}
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecodeImage, path, err)
	}
	return img, nil
}
