// Package catalog enumerates the marker icons available per category.
//
// Icons are plain PNG files grouped in one folder per category under a
// common root. The folders are listed every time they are queried, so icons
// added or removed while the editor runs are picked up without a restart.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"mapmark/internal/marker"
)

// Category is a marker taxonomy bucket and the folder holding its icons.
type Category struct {
	Name   string
	Folder string
}

var categories = []Category{
	{marker.DefaultCategory, "basic"},
	{"Adventure", "adventure"},
	{"Creatures and plants", "creatures&plants"},
	{"Landmarks", "landmarks"},
	{"People", "people"},
	{"Town", "town"},
	{"Village", "village"},
	{"World map", "worldmap"},
}

const iconExt = ".png"

func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Names returns the category names in display order.
func Names() []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	return names
}

func Default() string {
	return categories[0].Name
}

func IsCategory(name string) bool {
	_, ok := lookup(name)
	return ok
}

// IndexOf returns the display position of a category, or -1.
func IndexOf(name string) int {
	for i, c := range categories {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func lookup(name string) (Category, bool) {
	if i := IndexOf(name); i >= 0 {
		return categories[i], true
	}
	return Category{}, false
}

// Icon is one selectable marker image.
type Icon struct {
	Name string
	Path string
}

type Catalog struct {
	root string
	log  zerolog.Logger
}

func New(root string, log zerolog.Logger) *Catalog {
	return &Catalog{root: root, log: log}
}

func (c *Catalog) Root() string {
	return c.root
}

// Dir returns the icon folder of category. Unknown categories map to the
// default category's folder.
func (c *Catalog) Dir(category string) string {
	cat, ok := lookup(category)
	if !ok {
		cat = categories[0]
	}
	return filepath.Join(c.root, cat.Folder)
}

// ListIcons returns the icons of category sorted by file name. It never
// fails: an unknown category lists the default category instead and a
// missing folder lists nothing. Both cases are logged.
func (c *Catalog) ListIcons(category string) []Icon {
	cat, ok := lookup(category)
	if !ok {
		c.log.Warn().
			Str("category", category).
			Str("fallback", Default()).
			Msg("unknown marker category")
		cat = categories[0]
	}
	return c.list(cat)
}

func (c *Catalog) list(cat Category) []Icon {
	dir := filepath.Join(c.root, cat.Folder)
	entries, err := os.ReadDir(dir)
	if err != nil {
		c.log.Warn().Err(err).Str("category", cat.Name).Str("dir", dir).Msg("cannot list marker icons")
		return nil
	}

	icons := make([]Icon, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isIconFile(entry.Name()) {
			continue
		}
		icons = append(icons, Icon{
			Name: strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
			Path: filepath.Join(dir, entry.Name()),
		})
	}
	return icons
}

func isIconFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), iconExt)
}

// Resolution is the outcome of validating a saved (category, icon) pair
// against the icons currently on disk.
type Resolution struct {
	Category string
	Index    int
	// Icon is the zero value when even the default category has no icons.
	Icon     Icon
	FellBack bool
	Reason   string
}

// Resolve checks that index addresses an existing icon of category. When it
// does not, the first icon of the default category is used instead.
func (c *Catalog) Resolve(category string, index int) Resolution {
	cat, ok := lookup(category)
	if !ok {
		return c.fallback(fmt.Sprintf("unknown category %q", category))
	}
	icons := c.list(cat)
	if index < 0 || index >= len(icons) {
		return c.fallback(fmt.Sprintf("icon %d out of range for %q (%d icons)", index, category, len(icons)))
	}
	return Resolution{Category: cat.Name, Index: index, Icon: icons[index]}
}

func (c *Catalog) fallback(reason string) Resolution {
	r := Resolution{
		Category: Default(),
		Index:    0,
		FellBack: true,
		Reason:   reason,
	}
	if icons := c.list(categories[0]); len(icons) > 0 {
		r.Icon = icons[0]
	}
	return r
}
