package fixture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/templui/sitefixtures/internal/model"
)

// Source opens fixture files
type Source interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// RepositoryStore is the Store plus the repository level operations the
// loader needs around a materialization
type RepositoryStore interface {
	Store
	CreatePath(ctx context.Context, path string) (*model.Document, error)
	Purge(ctx context.Context) error
	Clear()
}

type Options struct {
	File             string
	Roots            Roots
	DefaultLocale    string
	FailOnParseError bool // when false a malformed file loads as empty
	Append           bool // keep existing documents instead of purging first
}

// Result reports the outcome of a load
type Result struct {
	Loaded       bool
	ParseSkipped bool
	Stats        Stats
	Duration     time.Duration
	Err          error
}

// Message is a one line summary suitable for console output
func (r Result) Message() string {
	if !r.Loaded {
		return fmt.Sprintf("Error while loading website data: %v", r.Err)
	}
	msg := fmt.Sprintf("Loaded %d pages, %d routes, %d blocks, %d translations in %s",
		r.Stats.Pages, r.Stats.Routes, r.Stats.Blocks, r.Stats.Translations, r.Duration.Round(time.Millisecond))
	if r.ParseSkipped {
		msg += " (fixture file could not be parsed, nothing loaded)"
	}
	return msg
}

type Loader struct {
	store    RepositoryStore
	source   Source
	renderer BodyRenderer
	opts     Options
	log      *slog.Logger
}

func NewLoader(s RepositoryStore, source Source, renderer BodyRenderer, opts Options, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{
		store:    s,
		source:   source,
		renderer: renderer,
		opts:     opts,
		log:      log,
	}
}

// Load runs one fixture load. It never panics or returns an error directly:
// failures are logged and reported through Result.
func (l *Loader) Load(ctx context.Context) Result {
	start := time.Now()

	var res Result
	res.Stats, res.ParseSkipped, res.Err = l.load(ctx)
	res.Duration = time.Since(start)

	if res.Err != nil {
		l.store.Clear()
		l.log.Error("error while loading website data", "error", res.Err, "file", l.opts.File)
		return res
	}

	res.Loaded = true
	l.log.Info("website data loaded",
		"file", l.opts.File,
		"pages", res.Stats.Pages,
		"routes", res.Stats.Routes,
		"blocks", res.Stats.Blocks,
		"translations", res.Stats.Translations,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res
}

func (l *Loader) load(ctx context.Context) (Stats, bool, error) {
	if !l.opts.Append {
		err := l.store.Purge(ctx)
		if err != nil {
			return Stats{}, false, storeErr("purge", err)
		}
	}

	err := l.createRootNodes(ctx)
	if err != nil {
		return Stats{}, false, err
	}

	pages, err := l.readPages(ctx)
	skipped := false
	var parseErr *ConfigParseError
	if errors.As(err, &parseErr) && !l.opts.FailOnParseError {
		l.log.Error("error while parsing fixture file", "file", parseErr.File, "error", parseErr.Err)
		pages, err, skipped = nil, nil, true
	}
	if err != nil {
		return Stats{}, false, err
	}

	m := NewMaterializer(l.store, l.opts.Roots, l.opts.DefaultLocale, l.renderer, l.log)
	_, err = m.Materialize(ctx, pages)
	return m.Stats(), skipped, err
}

func (l *Loader) createRootNodes(ctx context.Context) error {
	roots := l.opts.Roots
	l.log.Info("creating root nodes", "routes", roots.Routes, "content", roots.Content, "menu", roots.Menu)

	for _, p := range []string{roots.Routes, roots.Content, roots.Menu} {
		if p == "" {
			continue
		}
		_, err := l.store.CreatePath(ctx, p)
		if err != nil {
			return storeErr("create "+p, err)
		}
	}

	err := l.store.Flush(ctx)
	if err != nil {
		return storeErr("flush root nodes", err)
	}
	return nil
}

func (l *Loader) readPages(ctx context.Context) (PageSet, error) {
	r, err := l.source.Open(ctx, l.opts.File)
	if err != nil {
		return nil, fmt.Errorf("%s could not be read: %w", l.opts.File, err)
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s could not be read: %w", l.opts.File, err)
	}

	pages, err := Parse(data)
	if err != nil {
		return nil, &ConfigParseError{File: l.opts.File, Err: err}
	}
	return pages, nil
}
