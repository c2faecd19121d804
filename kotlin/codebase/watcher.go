package codebase

import (
	"os"
	"sync"
	"time"
)

// FileWatcher polls the project files and reparses those that changed on
// disk.
type FileWatcher struct {
	codebase     *Codebase
	stopCh       chan struct{}
	stopOnce     sync.Once
	pollInterval time.Duration
	modTimes     map[string]time.Time

	// Skip, when set, leaves a file alone, e.g. because an editor owns
	// its content.
	Skip func(path string) bool

	// OnChange is called after a file was reparsed, or with a nil
	// FileInfo after it disappeared.
	OnChange func(path string, info *FileInfo)
}

func NewFileWatcher(c *Codebase, interval time.Duration) *FileWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &FileWatcher{
		codebase:     c,
		stopCh:       make(chan struct{}),
		pollInterval: interval,
		modTimes:     make(map[string]time.Time),
	}
}

// Start seeds the watcher with the files the codebase already holds, so
// the first poll only picks up files added or changed since they were
// parsed, and then polls in the background.
func (w *FileWatcher) Start() {
	w.seed()
	go w.run()
}

func (w *FileWatcher) seed() {
	for _, path := range w.codebase.Paths() {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		w.modTimes[path] = info.ModTime()
	}
}

func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *FileWatcher) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.Scan()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Scan()
		}
	}
}

// Scan runs one poll. It is not safe to call concurrently with a started
// watcher.
func (w *FileWatcher) Scan() {
	paths, err := w.codebase.Project().Files()
	if err != nil {
		log.Errorf("watch: %s", err)
		return
	}

	current := make(map[string]bool, len(paths))
	for _, path := range paths {
		current[path] = true
		if w.Skip != nil && w.Skip(path) {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		lastMod, known := w.modTimes[path]
		if known && !info.ModTime().After(lastMod) {
			continue
		}
		w.modTimes[path] = info.ModTime()
		f, err := w.codebase.ScanFile(path)
		if err != nil {
			log.Warningf("watch: %s", err)
			continue
		}
		if w.OnChange != nil {
			w.OnChange(path, f)
		}
	}

	for path := range w.modTimes {
		if current[path] {
			continue
		}
		delete(w.modTimes, path)
		w.codebase.RemoveFile(path)
		if w.OnChange != nil {
			w.OnChange(path, nil)
		}
	}
}
