package document

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"mapmark/internal/catalog"
	"mapmark/internal/marker"
)

var red = marker.RGB{R: 0xff}

// newStore returns a store whose catalog has one icon in Basic and two in
// Town.
func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	writeTestPNG(t, filepath.Join(root, "basic", "dot.png"), 4, 4)
	writeTestPNG(t, filepath.Join(root, "town", "inn.png"), 4, 4)
	writeTestPNG(t, filepath.Join(root, "town", "smithy.png"), 4, 4)
	return NewStore(catalog.New(root, zerolog.Nop()), zerolog.Nop()), root
}

func addMarker(t *testing.T, doc *Document, m marker.Marker) {
	t.Helper()
	i, err := doc.AddMarker(m.Position)
	require.NoError(t, err)
	require.NoError(t, doc.UpdateMarker(i, func(dst *marker.Marker) { *dst = m }))
}

func TestSaveLoad_Scenario(t *testing.T) {
	store, _ := newStore(t)
	doc := newMap(t)
	inn := marker.Marker{
		Position:    marker.Point{X: 10, Y: 20},
		Category:    "Town",
		IconIndex:   0,
		Name:        "Inn",
		NameVisible: true,
		TextColor:   red,
	}
	addMarker(t, doc, inn)

	path := filepath.Join(t.TempDir(), "inn"+Extension)
	require.NoError(t, store.Save(doc, path))

	got, warnings, err := store.Load(path)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, got.Markers, 1)
	assert.Equal(t, inn, got.Markers[0])
	assert.True(t, got.Markers[0].NameVisible)
	assert.False(t, got.Dirty)
}

func TestSaveLoad_RoundTripPreservesFieldsAndOrder(t *testing.T) {
	store, _ := newStore(t)
	doc := newMap(t)
	want := []marker.Marker{
		{Position: marker.Point{X: 1.25, Y: 2.5}, Category: "Basic", Name: "bottom", Description: "first line\nsecond line"},
		{Position: marker.Point{X: 33.3333, Y: 0.1}, Category: "Town", IconIndex: 1, Name: "middle", NameVisible: true, TextColor: marker.RGB{R: 0x90, G: 0xee, B: 0x90}},
		{Position: marker.Point{X: 63, Y: 47}, Category: "Town", Name: "top", Description: "ünïcode: ✓"},
	}
	for _, m := range want {
		addMarker(t, doc, m)
	}

	path := filepath.Join(t.TempDir(), "world"+Extension)
	require.NoError(t, store.Save(doc, path))
	got, warnings, err := store.Load(path)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.Len(t, got.Markers, len(want))
	for i := range want {
		assert.Equal(t, want[i].Name, got.Markers[i].Name, "stacking order")
		assert.Equal(t, want[i].Description, got.Markers[i].Description)
		assert.Equal(t, want[i].Category, got.Markers[i].Category)
		assert.Equal(t, want[i].IconIndex, got.Markers[i].IconIndex)
		assert.Equal(t, want[i].NameVisible, got.Markers[i].NameVisible)
		assert.Equal(t, want[i].TextColor, got.Markers[i].TextColor)
		assert.InDelta(t, want[i].Position.X, got.Markers[i].Position.X, 1e-9)
		assert.InDelta(t, want[i].Position.Y, got.Markers[i].Position.Y, 1e-9)
	}
	assert.Equal(t, doc.Bounds(), got.Bounds())
}

func TestSave_WritesCompanionImageAndRecords(t *testing.T) {
	store, _ := newStore(t)
	doc := newMap(t)
	original := doc.BackgroundPath
	addMarker(t, doc, marker.Marker{Category: "Basic", Name: "a"})
	addMarker(t, doc, marker.Marker{Category: "Basic", Name: "b"})

	dir := t.TempDir()
	path := filepath.Join(dir, "campaign"+Extension)
	require.NoError(t, store.Save(doc, path))

	imgPath := filepath.Join(dir, "campaign.png")
	assert.FileExists(t, imgPath)
	assert.Equal(t, imgPath, doc.BackgroundPath)
	assert.NotEqual(t, original, doc.BackgroundPath)
	assert.False(t, doc.Dirty)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var f mapFile
	require.NoError(t, yaml.Unmarshal(data, &f))
	assert.Equal(t, FormatVersion, f.Version)
	require.Len(t, f.Records, 3)
	assert.Equal(t, kindMarker, f.Records[0].Kind)
	assert.Equal(t, "b", f.Records[0].Marker.Name, "top-most marker is stored first")
	assert.Equal(t, "a", f.Records[1].Marker.Name)
	assert.Equal(t, kindImage, f.Records[2].Kind)
	assert.Equal(t, "campaign.png", f.Records[2].Image.Path)
}

func TestSave_OverwritesSilently(t *testing.T) {
	store, _ := newStore(t)
	doc := newMap(t)
	path := filepath.Join(t.TempDir(), "m"+Extension)
	require.NoError(t, store.Save(doc, path))

	addMarker(t, doc, marker.Marker{Category: "Basic", Name: "later"})
	require.NoError(t, store.Save(doc, path))

	got, _, err := store.Load(path)
	require.NoError(t, err)
	require.Len(t, got.Markers, 1)
	assert.Equal(t, "later", got.Markers[0].Name)
}

func TestSave_NoBackground(t *testing.T) {
	store, _ := newStore(t)

	err := store.Save(New(), filepath.Join(t.TempDir(), "x"+Extension))

	assert.ErrorIs(t, err, ErrNoBackground)
}

func TestSaveLoad_EmptyDocument(t *testing.T) {
	store, _ := newStore(t)
	doc := newMap(t)
	path := filepath.Join(t.TempDir(), "empty"+Extension)

	require.NoError(t, store.Save(doc, path))
	got, warnings, err := store.Load(path)

	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Empty(t, got.Markers)
	assert.True(t, got.HasBackground())
}

func TestLoad_IconIndexFallback(t *testing.T) {
	store, root := newStore(t)
	doc := newMap(t)
	addMarker(t, doc, marker.Marker{Category: "Town", IconIndex: 1, Name: "Smithy", TextColor: red})
	addMarker(t, doc, marker.Marker{Category: "Town", IconIndex: 0, Name: "Inn"})
	path := filepath.Join(t.TempDir(), "town"+Extension)
	require.NoError(t, store.Save(doc, path))

	require.NoError(t, os.Remove(filepath.Join(root, "town", "smithy.png")))

	got, warnings, err := store.Load(path)
	require.NoError(t, err)
	require.Len(t, got.Markers, 2)

	smithy := got.Markers[0]
	assert.Equal(t, catalog.Default(), smithy.Category)
	assert.Equal(t, 0, smithy.IconIndex)
	assert.Equal(t, "Smithy", smithy.Name)
	assert.Equal(t, red, smithy.TextColor)

	assert.Equal(t, "Town", got.Markers[1].Category)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Smithy", warnings[0].Name)
	assert.Contains(t, warnings[0].String(), "out of range")
}

func TestLoad_UnknownCategoryFallback(t *testing.T) {
	store, _ := newStore(t)
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "map.png"), 8, 8)
	content := `version: 1
records:
  - kind: marker
    marker: {x: 1, y: 2, category: Dungeons, icon: 3, name: Crypt, visible: true, color: "#0000ff"}
  - kind: marker
    marker: {x: 3, y: 4, category: Town, icon: 1, name: Smithy, color: "#000000"}
  - kind: image
    image: {path: map.png}
`
	path := filepath.Join(dir, "m"+Extension)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	got, warnings, err := store.Load(path)
	require.NoError(t, err)

	require.Len(t, got.Markers, 2)
	assert.Equal(t, "Smithy", got.Markers[0].Name)
	assert.Equal(t, "Town", got.Markers[0].Category)
	assert.Equal(t, 1, got.Markers[0].IconIndex)

	crypt := got.Markers[1]
	assert.Equal(t, "Crypt", crypt.Name)
	assert.Equal(t, catalog.Default(), crypt.Category)
	assert.Equal(t, 0, crypt.IconIndex)
	assert.True(t, crypt.NameVisible)

	require.Len(t, warnings, 1)
	assert.Equal(t, 0, warnings[0].Record)
	assert.Contains(t, warnings[0].Reason, "Dungeons")
}

func TestLoad_Failures(t *testing.T) {
	store, _ := newStore(t)
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "map.png"), 8, 8)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.png"), []byte("not a png"), 0644))

	cases := []struct {
		name    string
		content string
		wantErr error
	}{
		{"not_yaml", "\x00\x01{{{not yaml", ErrCorrupt},
		{"no_version", "records: []\n", ErrCorrupt},
		{"future_version", "version: 99\nrecords: []\n", ErrUnsupportedVersion},
		{"no_image", "version: 1\nrecords:\n  - kind: marker\n    marker: {category: Basic, color: \"#000000\"}\n", ErrCorrupt},
		{"unknown_kind", "version: 1\nrecords:\n  - kind: label\n  - kind: image\n    image: {path: map.png}\n", ErrCorrupt},
		{"marker_without_data", "version: 1\nrecords:\n  - kind: marker\n  - kind: image\n    image: {path: map.png}\n", ErrCorrupt},
		{"bad_color", "version: 1\nrecords:\n  - kind: marker\n    marker: {category: Basic, color: red}\n  - kind: image\n    image: {path: map.png}\n", ErrCorrupt},
		{"two_images", "version: 1\nrecords:\n  - kind: image\n    image: {path: map.png}\n  - kind: image\n    image: {path: map.png}\n", ErrCorrupt},
		{"image_without_path", "version: 1\nrecords:\n  - kind: image\n", ErrCorrupt},
		{"missing_image", "version: 1\nrecords:\n  - kind: image\n    image: {path: gone.png}\n", ErrMissingAsset},
		{"garbage_image", "version: 1\nrecords:\n  - kind: image\n    image: {path: garbage.png}\n", ErrDecodeImage},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := filepath.Join(dir, c.name+Extension)
			require.NoError(t, os.WriteFile(path, []byte(c.content), 0644))

			doc, warnings, err := store.Load(path)

			require.ErrorIs(t, err, c.wantErr)
			assert.True(t, IsLoadFailure(err))
			assert.Nil(t, doc)
			assert.Nil(t, warnings)
		})
	}
}

func TestLoad_UnreadableFile(t *testing.T) {
	store, _ := newStore(t)

	_, _, err := store.Load(filepath.Join(t.TempDir(), "nope"+Extension))

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, IsLoadFailure(err))
}

func TestLoad_AbsoluteImagePath(t *testing.T) {
	store, _ := newStore(t)
	imgPath := filepath.Join(t.TempDir(), "elsewhere.png")
	writeTestPNG(t, imgPath, 8, 8)
	path := filepath.Join(t.TempDir(), "abs"+Extension)
	content := "version: 1\nrecords:\n  - kind: image\n    image: {path: " + imgPath + "}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	got, _, err := store.Load(path)

	require.NoError(t, err)
	assert.Equal(t, imgPath, got.BackgroundPath)
}

func TestDefaultFileName(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)

	assert.Equal(t, "2024-03-09-14-05.mapmark", DefaultFileName(now))
}

func TestCompanionImagePath(t *testing.T) {
	assert.Equal(t, filepath.Join("maps", "a.png"), CompanionImagePath(filepath.Join("maps", "a.mapmark")))
	assert.Equal(t, "a.png", CompanionImagePath("a"))
	assert.Equal(t, "a.png.png", CompanionImagePath("a.png"))
}
