// Package watcher notices notebook changes made outside this process: edits
// to an imported notebook file and saves to the shared store.
package watcher

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"

	"canvasnotes/internal/domain"
	"canvasnotes/internal/logger"
	"canvasnotes/internal/notebookfile"
)

// FileChangedHandler receives the re-read notebook. err is set when the
// file no longer holds a valid notebook; nb is then zero.
type FileChangedHandler func(path string, nb domain.Notebook, err error)

// DefaultSettle is how long a file must be quiet before it is re-read.
// Editors often write a file in several steps.
const DefaultSettle = 200 * time.Millisecond

// FileWatcher re-reads watched notebook files when they change on disk.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	onChange FileChangedHandler
	settle   time.Duration

	mu       sync.Mutex
	watching map[string]*watchedFile // abs path
	done     chan struct{}
}

type watchedFile struct {
	sum      [sha256.Size]byte
	debounce func(func())
}

// NewFileWatcher starts the event loop. settle <= 0 uses DefaultSettle.
func NewFileWatcher(settle time.Duration, onChange FileChangedHandler) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	fw := &FileWatcher{
		watcher:  w,
		onChange: onChange,
		settle:   settle,
		watching: map[string]*watchedFile{},
		done:     make(chan struct{}),
	}
	go fw.watchLoop()
	return fw, nil
}

// Watch starts watching path. The current content is remembered so an
// unchanged rewrite does not fire.
func (fw *FileWatcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	fw.mu.Lock()
	fw.watching[abs] = &watchedFile{sum: sha256.Sum256(data), debounce: debounce.New(fw.settle)}
	fw.mu.Unlock()

	// Watch the directory: editors replace files by rename, which drops a
	// watch on the file itself.
	return fw.watcher.Add(filepath.Dir(abs))
}

// Remember records data as the file's known content. Call it after this
// process writes the file so the write is not reported back.
func (fw *FileWatcher) Remember(path string, data []byte) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if f, ok := fw.watching[abs]; ok {
		f.sum = sha256.Sum256(data)
	}
}

// Unwatch stops reporting changes to path.
func (fw *FileWatcher) Unwatch(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	fw.mu.Lock()
	delete(fw.watching, abs)
	fw.mu.Unlock()
}

func (fw *FileWatcher) Close() error {
	err := fw.watcher.Close()
	<-fw.done
	return err
}

func (fw *FileWatcher) watchLoop() {
	defer close(fw.done)
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, _ := filepath.Abs(event.Name)
			fw.mu.Lock()
			f, watched := fw.watching[abs]
			fw.mu.Unlock()
			if watched {
				f.debounce(func() { fw.reload(abs) })
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("file watcher error", err)
		}
	}
}

func (fw *FileWatcher) reload(abs string) {
	data, err := os.ReadFile(abs)
	if err != nil {
		logger.Error("read watched file", err, map[string]any{"path": abs})
		return
	}
	sum := sha256.Sum256(data)

	fw.mu.Lock()
	f, watched := fw.watching[abs]
	same := watched && f.sum == sum
	if watched {
		f.sum = sum
	}
	fw.mu.Unlock()
	if !watched || same {
		return
	}

	logger.Debug("notebook file changed", map[string]any{"path": abs})
	nb, err := notebookfile.Unmarshal(data)
	if fw.onChange != nil {
		fw.onChange(abs, nb, err)
	}
}
