// Package watch re-profiles a CSV file whenever it changes on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Sumee7/project1autoinsight/pkg/config"
	"github.com/Sumee7/project1autoinsight/pkg/errors"
	"github.com/Sumee7/project1autoinsight/pkg/parser"
	"github.com/Sumee7/project1autoinsight/pkg/profile"
	"github.com/Sumee7/project1autoinsight/pkg/schema"
)

// Update carries the result of one re-analysis.
type Update struct {
	Path    string
	Summary profile.Summary
	Report  profile.Report
	At      time.Time
}

// Watcher re-analyzes a watched CSV after every change, debounced so
// rapid saves collapse into one run.
type Watcher struct {
	fsw      *fsnotify.Watcher
	cfg      *config.Config
	debounce time.Duration

	mu    sync.Mutex
	files map[string]*fileState

	// OnUpdate receives each fresh profile. OnError receives analysis
	// and watch failures; the loop keeps running after either.
	OnUpdate func(Update)
	OnError  func(path string, err error)
}

type fileState struct {
	modTime time.Time
	size    int64
	busy    bool
}

// New creates a watcher.
func New(cfg *config.Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeWatchFailed, "creating file watcher")
	}
	return &Watcher{
		fsw:      fsw,
		cfg:      cfg,
		debounce: 500 * time.Millisecond,
		files:    make(map[string]*fileState),
	}, nil
}

// Watch registers a CSV file. The containing directory is watched
// because editors often replace files instead of writing in place.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeWatchFailed, "resolving path")
	}
	stat, err := os.Stat(abs)
	if err != nil {
		return errors.FileRead(abs, err)
	}

	w.mu.Lock()
	w.files[abs] = &fileState{modTime: stat.ModTime(), size: stat.Size()}
	w.mu.Unlock()

	if err := w.fsw.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrap(err, errors.CodeWatchFailed, "watching directory")
	}
	return nil
}

// Run blocks handling change events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	timers := make(map[string]*time.Timer)
	var timerMu sync.Mutex

	for {
		select {
		case <-ctx.Done():
			w.fsw.Close()
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}

			w.mu.Lock()
			_, watched := w.files[abs]
			w.mu.Unlock()
			if !watched {
				continue
			}

			timerMu.Lock()
			if t, ok := timers[abs]; ok {
				t.Stop()
			}
			timers[abs] = time.AfterFunc(w.debounce, func() {
				w.reanalyze(abs)
			})
			timerMu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if w.OnError != nil {
				w.OnError("", err)
			}
		}
	}
}

// reanalyze re-profiles one file if it actually changed since the
// last run.
func (w *Watcher) reanalyze(path string) {
	w.mu.Lock()
	state := w.files[path]
	if state == nil || state.busy {
		w.mu.Unlock()
		return
	}
	state.busy = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		state.busy = false
		w.mu.Unlock()
	}()

	stat, err := os.Stat(path)
	if err != nil {
		w.fail(path, errors.FileRead(path, err))
		return
	}
	if stat.ModTime().Equal(state.modTime) && stat.Size() == state.size {
		return
	}

	update, err := Analyze(path, w.cfg)
	if err != nil {
		w.fail(path, err)
		return
	}

	w.mu.Lock()
	state.modTime = stat.ModTime()
	state.size = stat.Size()
	w.mu.Unlock()

	if w.OnUpdate != nil {
		w.OnUpdate(update)
	}
}

func (w *Watcher) fail(path string, err error) {
	if w.OnError != nil {
		w.OnError(path, err)
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Analyze reads, parses and profiles a CSV file in one shot.
func Analyze(path string, cfg *config.Config) (Update, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Update{}, errors.FileRead(path, err)
	}

	table := parser.Parse(data)
	cols := schema.InferTable(table, schema.OptionsFrom(cfg))
	ds := schema.BuildDataset(table, cols)

	p := profile.FromConfig(cfg)
	return Update{
		Path:    path,
		Summary: p.Summarize(ds, cols),
		Report:  p.Score(ds),
		At:      time.Now(),
	}, nil
}
