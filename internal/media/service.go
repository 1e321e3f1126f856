package media

import (
	"context"
	"io"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/radif/medias/internal/apperr"
)

// Storage is the object store uploads are written to.
type Storage interface {
	// Put writes body under name and returns the tagged key it was stored at.
	Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) (Key, error)
	// PublicURL returns the externally fetchable URL of a stored key.
	PublicURL(key Key) (string, error)
	// Delete removes a stored key.
	Delete(ctx context.Context, key Key) error
}

// Store persists metadata records.
type Store interface {
	Insert(ctx context.Context, key Key, alt string) error
	List(ctx context.Context, limit, offset int) ([]Media, error)
}

// File is one uploaded file entry.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// FileFromHeader adapts a multipart file header.
func FileFromHeader(fh *multipart.FileHeader) File {
	return File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// Item is a metadata record together with its resolved URL.
type Item struct {
	Media
	URL string `json:"url"`
}

// Service uploads files and records them.
type Service struct {
	storage  Storage
	store    Store
	resolver *Resolver
	log      *zap.Logger
	newID    func() string
	cleanup  bool
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIDGenerator replaces the random object id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithCleanupOnFailure deletes a stored object when its metadata insert fails.
func WithCleanupOnFailure(enabled bool) Option {
	return func(s *Service) { s.cleanup = enabled }
}

// NewService creates a new media Service.
func NewService(storage Storage, store Store, resolver *Resolver, opts ...Option) *Service {
	s := &Service{
		storage:  storage,
		store:    store,
		resolver: resolver,
		log:      zap.NewNop(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload stores every file concurrently and returns their public URLs in
// input order. The first failure fails the whole call; files that were
// already stored are left in place.
func (s *Service) Upload(ctx context.Context, files []File) ([]string, error) {
	if len(files) == 0 {
		return nil, apperr.ValidationError("No files")
	}

	urls := make([]string, len(files))
	var g errgroup.Group
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			url, err := s.uploadOne(ctx, f)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

func (s *Service) uploadOne(ctx context.Context, f File) (string, error) {
	name := s.newID() + "." + ExtensionFromContentType(f.ContentType)

	body, err := f.Open()
	if err != nil {
		return "", apperr.E(apperr.Unknown, "open "+f.Name, err)
	}
	defer body.Close()

	key, err := s.storage.Put(ctx, name, body, f.Size, f.ContentType)
	if err != nil {
		if apperr.KindOf(err) == apperr.Unknown {
			err = apperr.StorageError("store "+name, err)
		}
		return "", err
	}

	url, err := s.storage.PublicURL(key)
	if err != nil {
		s.discard(ctx, key)
		return "", err
	}

	if err := s.store.Insert(ctx, key, f.Name); err != nil {
		s.discard(ctx, key)
		return "", apperr.E(apperr.Unknown, "record media", err)
	}
	return url, nil
}

// discard removes an object whose upload failed after it was stored.
func (s *Service) discard(ctx context.Context, key Key) {
	if !s.cleanup {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.log.Warn("orphaned upload", zap.String("key", key.String()), zap.Error(err))
	}
}

// List returns recent records with their URLs resolved.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Item, error) {
	records, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(records))
	for _, m := range records {
		url, err := s.resolver.URL(m.Key)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{Media: m, URL: url})
	}
	return items, nil
}

// ExtensionFromContentType returns the subtype of a content type,
// e.g. "image/png" -> "png". Unknown types get "bin".
func ExtensionFromContentType(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	_, sub, ok := strings.Cut(strings.TrimSpace(mediaType), "/")
	sub = strings.ToLower(strings.TrimSpace(sub))
	if !ok || sub == "" {
		return "bin"
	}
	return sub
}
