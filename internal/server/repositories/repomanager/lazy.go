package repomanager

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/booklib/internal/logging"
	"golang.org/x/sync/singleflight"
)

// OpenFunc opens a backend for a DSN.
type OpenFunc func(ctx context.Context, dsn string) (RepositoryManager, error)

// openTimeout bounds a shared open that no single caller owns.
const openTimeout = 30 * time.Second

// Lazy is the process-wide store accessor. The first Get connects and caches
// the manager; concurrent first calls share the same attempt but each stops
// waiting when its own context ends. A failed attempt is not cached, so the
// next Get retries.
type Lazy struct {
	dsn    string
	open   OpenFunc
	logger logging.Logger

	group singleflight.Group

	mu sync.Mutex
	m  RepositoryManager
}

func NewLazy(dsn string, logger logging.Logger) *Lazy {
	return NewLazyWith(dsn, Open, logger)
}

// NewLazyWith is NewLazy with an explicit opener.
func NewLazyWith(dsn string, open OpenFunc, logger logging.Logger) *Lazy {
	return &Lazy{dsn: dsn, open: open, logger: logger.With("module", "store")}
}

func (l *Lazy) cached() RepositoryManager {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.m
}

// Get returns the cached manager, opening it on first use. No lock is held
// while the backend connects.
func (l *Lazy) Get(ctx context.Context) (RepositoryManager, error) {
	if m := l.cached(); m != nil {
		return m, nil
	}

	ch := l.group.DoChan("open", func() (any, error) {
		if m := l.cached(); m != nil {
			return m, nil
		}

		// The attempt outlives the caller that started it.
		openCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), openTimeout)
		defer cancel()

		m, err := l.open(openCtx, l.dsn)
		if err != nil {
			l.logger.Error(openCtx, "store open failed", "error", err)
			return nil, err
		}

		l.mu.Lock()
		l.m = m
		l.mu.Unlock()

		l.logger.Info(openCtx, "store opened")
		return m, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(RepositoryManager), nil
	}
}

// Close releases the cached manager, if any. A later Get reopens it.
func (l *Lazy) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.m == nil {
		return nil
	}
	err := l.m.Close(ctx)
	l.m = nil
	return err
}
