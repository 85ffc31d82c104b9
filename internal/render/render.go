// Package render draws an annotated map into a raster image.
package render

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"mapmark/internal/catalog"
	"mapmark/internal/document"
	"mapmark/internal/marker"
)

type Options struct {
	// MarkerSize is the icon edge in pixels, clamped to the marker range.
	MarkerSize int
	FontSize   float64
}

func DefaultOptions() Options {
	return Options{
		MarkerSize: marker.DefaultSize,
		FontSize:   10,
	}
}

// labelGap separates the bottom of an icon from its name label.
const labelGap = 2

// PNG composes the background, every marker icon in stacking order and the
// visible name labels.
func PNG(doc *document.Document, cat *catalog.Catalog, opts Options) (image.Image, error) {
	if !doc.HasBackground() {
		return nil, document.ErrNoBackground
	}

	bounds := doc.Background.Bounds()
	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	dc.DrawImage(doc.Background, -bounds.Min.X, -bounds.Min.Y)

	face, err := labelFace(opts.FontSize)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)

	size := marker.ClampSize(opts.MarkerSize)
	icons := make(map[string]image.Image)
	for _, m := range doc.Markers {
		x := m.Position.X - float64(bounds.Min.X)
		y := m.Position.Y - float64(bounds.Min.Y)

		res := cat.Resolve(m.Category, m.IconIndex)
		icon, ok := icons[res.Icon.Path]
		if !ok && res.Icon.Path != "" {
			icon = loadIcon(res.Icon.Path, size)
			icons[res.Icon.Path] = icon
		}
		drawIcon(dc, icon, m, x, y, size)

		if label := m.Label(); label != "" {
			dc.SetColor(m.TextColor.Color())
			dc.DrawStringAnchored(label, x, y+float64(size)/2+labelGap, 0.5, 1)
		}
	}
	return dc.Image(), nil
}

// SavePNG renders doc and writes it to path.
func SavePNG(doc *document.Document, cat *catalog.Catalog, opts Options, path string) error {
	img, err := PNG(doc, cat, opts)
	if err != nil {
		return err
	}
	return gg.SavePNG(path, img)
}

func drawIcon(dc *gg.Context, icon image.Image, m marker.Marker, x, y float64, size int) {
	if icon == nil {
		// No usable icon file: a dot in the label color keeps the marker visible.
		dc.SetColor(m.TextColor.Color())
		dc.DrawCircle(x, y, float64(size)/2)
		dc.Fill()
		return
	}
	dc.DrawImageAnchored(icon, int(x), int(y), 0.5, 0.5)
}

// loadIcon decodes the icon at path scaled to a size x size square, or nil
// when the file cannot be read.
func loadIcon(path string, size int) image.Image {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil
	}
	return Scale(src, size, size)
}

// Scale resizes img to w x h with Catmull-Rom resampling.
func Scale(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

func labelFace(size float64) (font.Face, error) {
	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %v", err)
	}
	if size <= 0 {
		size = DefaultOptions().FontSize
	}
	return truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
