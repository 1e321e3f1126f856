package storage

import (
	"context"
	"io"
	"sync"

	"github.com/radif/medias/internal/media"
)

// Lazy defers building a remote backend until it is first used. A failed
// build is remembered and returned on every later call.
type Lazy struct {
	build func(ctx context.Context) (media.Storage, error)

	once    sync.Once
	backend media.Storage
	err     error
}

// NewLazy wraps a backend constructor.
func NewLazy(build func(ctx context.Context) (media.Storage, error)) *Lazy {
	return &Lazy{build: build}
}

func (l *Lazy) get(ctx context.Context) (media.Storage, error) {
	l.once.Do(func() {
		// the client outlives the request that triggered it
		l.backend, l.err = l.build(context.WithoutCancel(ctx))
	})
	return l.backend, l.err
}

// Put builds the backend on first use and stores body under name.
func (l *Lazy) Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) (media.Key, error) {
	b, err := l.get(ctx)
	if err != nil {
		return media.Key{}, err
	}
	return b.Put(ctx, name, body, size, contentType)
}

// PublicURL builds the backend on first use and returns the URL of key.
func (l *Lazy) PublicURL(key media.Key) (string, error) {
	b, err := l.get(context.Background())
	if err != nil {
		return "", err
	}
	return b.PublicURL(key)
}

// Delete builds the backend on first use and removes key.
func (l *Lazy) Delete(ctx context.Context, key media.Key) error {
	b, err := l.get(ctx)
	if err != nil {
		return err
	}
	return b.Delete(ctx, key)
}
