package render

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapmark/internal/catalog"
	"mapmark/internal/document"
	"mapmark/internal/marker"
)

var (
	white = color.RGBA{0xff, 0xff, 0xff, 0xff}
	red   = color.RGBA{0xff, 0x00, 0x00, 0xff}
	blue  = color.RGBA{0x00, 0x00, 0xff, 0xff}
)

func writeSolidPNG(t *testing.T, path string, w, h int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

// fixture returns a white 100x80 map and a catalog whose Town category holds
// a single red icon.
func fixture(t *testing.T) (*document.Document, *catalog.Catalog) {
	t.Helper()
	dir := t.TempDir()
	writeSolidPNG(t, filepath.Join(dir, "map.png"), 100, 80, white)
	writeSolidPNG(t, filepath.Join(dir, "markers", "town", "inn.png"), 16, 16, red)

	doc := document.New()
	require.NoError(t, doc.AttachBackground(filepath.Join(dir, "map.png")))
	return doc, catalog.New(filepath.Join(dir, "markers"), zerolog.Nop())
}

func place(t *testing.T, doc *document.Document, m marker.Marker) {
	t.Helper()
	i, err := doc.AddMarker(m.Position)
	require.NoError(t, err)
	require.NoError(t, doc.UpdateMarker(i, func(dst *marker.Marker) { *dst = m }))
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

// near reports whether two opaque colors match within resampling error.
func near(a, b color.RGBA) bool {
	d := func(x, y uint8) bool { return x-y <= 2 || y-x <= 2 }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B)
}

func TestPNG_DrawsIconCentered(t *testing.T) {
	doc, cat := fixture(t)
	place(t, doc, marker.Marker{Position: marker.Point{X: 50, Y: 40}, Category: "Town"})

	img, err := PNG(doc, cat, Options{MarkerSize: 20})
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 100, 80), img.Bounds())
	assert.True(t, near(red, rgbaAt(img, 50, 40)))
	assert.True(t, near(red, rgbaAt(img, 42, 32)))
	assert.Equal(t, white, rgbaAt(img, 30, 40), "outside the icon square")
	assert.Equal(t, white, rgbaAt(img, 5, 5))
}

func TestPNG_PlaceholderWithoutIcon(t *testing.T) {
	doc, cat := fixture(t)
	// Basic has no icons in the fixture, so the marker falls back to a dot.
	place(t, doc, marker.Marker{Position: marker.Point{X: 20, Y: 20}, Category: "Basic", TextColor: marker.RGB{B: 0xff}})

	img, err := PNG(doc, cat, Options{MarkerSize: 20})
	require.NoError(t, err)

	assert.True(t, near(blue, rgbaAt(img, 20, 20)))
}

func TestPNG_StackingOrder(t *testing.T) {
	doc, cat := fixture(t)
	place(t, doc, marker.Marker{Position: marker.Point{X: 50, Y: 40}, Category: "Town"})
	place(t, doc, marker.Marker{Position: marker.Point{X: 50, Y: 40}, Category: "Basic", TextColor: marker.RGB{B: 0xff}})

	img, err := PNG(doc, cat, Options{MarkerSize: 20})
	require.NoError(t, err)

	assert.True(t, near(blue, rgbaAt(img, 50, 40)), "last marker is drawn on top")
}

func TestPNG_LabelOnlyWhenVisible(t *testing.T) {
	doc, cat := fixture(t)
	m := marker.Marker{Position: marker.Point{X: 50, Y: 20}, Category: "Town", Name: "WWWW", TextColor: marker.RGB{}}
	place(t, doc, m)

	hidden, err := PNG(doc, cat, DefaultOptions())
	require.NoError(t, err)

	require.NoError(t, doc.UpdateMarker(0, func(m *marker.Marker) { m.NameVisible = true }))
	shown, err := PNG(doc, cat, DefaultOptions())
	require.NoError(t, err)

	labelTop := 20 + marker.DefaultSize/2 + labelGap
	differs := false
	for y := labelTop; y < labelTop+12 && !differs; y++ {
		for x := 35; x < 65; x++ {
			if rgbaAt(hidden, x, y) != rgbaAt(shown, x, y) {
				differs = true
				break
			}
		}
	}
	assert.True(t, differs, "label pixels expected below the icon")
	for y := labelTop; y < labelTop+12; y++ {
		for x := 35; x < 65; x++ {
			require.Equal(t, white, rgbaAt(hidden, x, y))
		}
	}
}

func TestPNG_NoBackground(t *testing.T) {
	_, cat := fixture(t)

	_, err := PNG(document.New(), cat, DefaultOptions())

	assert.ErrorIs(t, err, document.ErrNoBackground)
}

func TestSavePNG(t *testing.T) {
	doc, cat := fixture(t)
	place(t, doc, marker.Marker{Position: marker.Point{X: 10, Y: 10}, Category: "Town"})
	path := filepath.Join(t.TempDir(), "export.png")

	require.NoError(t, SavePNG(doc, cat, DefaultOptions(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 80), img.Bounds())
}

func TestScale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetRGBA(x, y, red)
		}
	}

	dst := Scale(src, 10, 6)

	assert.Equal(t, image.Rect(0, 0, 10, 6), dst.Bounds())
	assert.True(t, near(red, dst.RGBAAt(5, 3)))
}

func TestLuminance(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			if x < 20 {
				img.SetRGBA(x, y, color.RGBA{A: 0xff})
			} else {
				img.SetRGBA(x, y, white)
			}
		}
	}

	t.Run("whole_image", func(t *testing.T) {
		grid := Luminance(img, img.Bounds(), 4, 2)
		require.Len(t, grid, 2)
		require.Len(t, grid[0], 4)
		assert.InDelta(t, 0.0, grid[0][0], 0.01)
		assert.InDelta(t, 1.0, grid[1][3], 0.01)
	})

	t.Run("past_the_edge", func(t *testing.T) {
		grid := Luminance(img, image.Rect(20, 0, 60, 20), 4, 2)
		assert.InDelta(t, 1.0, grid[0][0], 0.01)
		assert.Equal(t, -1.0, grid[0][3])
		assert.Equal(t, -1.0, grid[1][2])
	})

	t.Run("outside", func(t *testing.T) {
		grid := Luminance(img, image.Rect(100, 100, 140, 120), 4, 2)
		assert.Equal(t, -1.0, grid[0][0])
	})

	t.Run("degenerate", func(t *testing.T) {
		assert.Empty(t, Luminance(img, img.Bounds(), 0, 0))
	})
}
