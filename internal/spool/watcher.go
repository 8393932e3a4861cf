// Package spool watches a directory for signed-transaction files and submits
// each one through the smart client as it appears. Processed files move to
// sent/ or failed/ subdirectories by outcome, so a file is submitted at most
// once.
package spool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/bam-labs/bamroute/internal/client"
	"github.com/bam-labs/bamroute/internal/route"
)

const (
	sentDirName   = "sent"
	failedDirName = "failed"

	// defaultSettleDelay lets a writer finish before the file is read.
	defaultSettleDelay = 200 * time.Millisecond
)

// Sender submits one transaction payload; *client.Client satisfies it.
type Sender interface {
	SendTransaction(ctx context.Context, payload []byte, opts client.SendOptions) (*route.Result, error)
}

// Watcher drives the spool directory.
type Watcher struct {
	dir    string
	sender Sender
	opts   client.SendOptions
	settle time.Duration
	log    zerolog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithSettleDelay overrides how long a new file must sit quiet before it is
// read and submitted.
func WithSettleDelay(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithSendOptions sets the submission options applied to every spooled file.
func WithSendOptions(opts client.SendOptions) WatcherOption {
	return func(w *Watcher) { w.opts = opts }
}

// NewWatcher creates a Watcher over dir.
func NewWatcher(dir string, sender Sender, log zerolog.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		dir:     dir,
		sender:  sender,
		settle:  defaultSettleDelay,
		log:     log,
		pending: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the spool directory until the context is canceled. Files
// already present at startup are submitted first.
func (w *Watcher) Run(ctx context.Context) error {
	for _, sub := range []string{sentDirName, failedDirName} {
		if err := os.MkdirAll(filepath.Join(w.dir, sub), 0o755); err != nil {
			return fmt.Errorf("create %s dir: %w", sub, err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	if err := w.drainExisting(ctx); err != nil {
		return err
	}

	w.log.Info().Str("dir", w.dir).Msg("watching spool directory")

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if !w.eligible(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("spool watcher error")
		}
	}
}

// drainExisting submits files that were already waiting in the directory.
func (w *Watcher) drainExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read spool dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, e.Name())
		if w.eligible(path) {
			w.process(ctx, path)
		}
	}
	return nil
}

// eligible filters out the outcome subdirectories, hidden files and
// editor temp files.
func (w *Watcher) eligible(path string) bool {
	if filepath.Dir(path) != filepath.Clean(w.dir) {
		return false
	}
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".tmp") {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// schedule (re)arms the settle timer for one file. Repeated writes keep
// pushing the submission back until the file goes quiet.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		w.process(ctx, path)
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

// process reads, submits and files away one spool entry.
func (w *Watcher) process(ctx context.Context, path string) {
	payload, err := os.ReadFile(path)
	if err != nil {
		// Moved or deleted between event and settle.
		w.log.Warn().Str("file", path).Err(err).Msg("spool file unreadable, skipping")
		return
	}

	res, err := w.sender.SendTransaction(ctx, payload, w.opts)
	if err != nil {
		w.log.Error().Str("file", filepath.Base(path)).Err(err).Msg("spooled transaction failed")
		w.moveTo(path, failedDirName)
		return
	}

	w.log.Info().Str("file", filepath.Base(path)).Str("region", res.Region).Msg("spooled transaction accepted")
	w.moveTo(path, sentDirName)
}

func (w *Watcher) moveTo(path, sub string) {
	dst := filepath.Join(w.dir, sub, filepath.Base(path))
	if err := os.Rename(path, dst); err != nil {
		w.log.Error().Str("file", path).Err(err).Msg("failed to move spool file")
	}
}
