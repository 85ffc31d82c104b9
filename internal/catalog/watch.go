package catalog

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watcher reports which category folder gained, lost or changed an icon.
type Watcher struct {
	watcher *fsnotify.Watcher
	root    string
	// folders maps each watched category directory to its category name.
	folders map[string]string
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// Watch starts watching the icon root and every existing category folder of
// c. Category folders created later are picked up from the root.
func (c *Catalog) Watch() (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	root := filepath.Clean(c.root)
	if err := w.Add(root); err != nil {
		c.log.Debug().Err(err).Str("dir", root).Msg("not watching icon root")
	}
	folders := make(map[string]string, len(categories))
	for _, cat := range categories {
		dir := filepath.Clean(filepath.Join(c.root, cat.Folder))
		if err := w.Add(dir); err != nil {
			c.log.Debug().Err(err).Str("dir", dir).Msg("not watching icon folder")
			continue
		}
		folders[dir] = cat.Name
	}

	watcher := &Watcher{
		watcher: w,
		root:    root,
		folders: folders,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)

	// Changes are collected per category and reported once the folder has
	// been quiet for watchDebounce.
	pending := make(map[string]bool)
	flush := time.NewTimer(watchDebounce)
	flush.Stop()
	defer flush.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if category, ok := w.folderEvent(event); ok {
				pending[category] = true
				flush.Reset(watchDebounce)
				continue
			}
			if !isIconFile(event.Name) {
				continue
			}
			category, ok := w.folders[filepath.Dir(event.Name)]
			if !ok {
				continue
			}
			pending[category] = true
			flush.Reset(watchDebounce)
		case <-flush.C:
			for category := range pending {
				select {
				case w.Events <- category:
				case <-w.closeCh:
					return
				}
				delete(pending, category)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// folderEvent handles a category folder appearing or going away directly
// under the root. New folders are added to the watch list.
func (w *Watcher) folderEvent(event fsnotify.Event) (string, bool) {
	dir := filepath.Clean(event.Name)
	if filepath.Dir(dir) != w.root {
		return "", false
	}
	category := ""
	for _, cat := range categories {
		if cat.Folder == filepath.Base(dir) {
			category = cat.Name
		}
	}
	if category == "" {
		return "", false
	}
	if event.Op&fsnotify.Create != 0 {
		if err := w.watcher.Add(dir); err != nil {
			return "", false
		}
		w.folders[dir] = category
	}
	return category, true
}
