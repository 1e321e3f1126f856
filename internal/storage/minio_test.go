package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radif/medias/internal/apperr"
	"github.com/radif/medias/internal/media"
)

func TestPublicReadPolicy(t *testing.T) {
	t.Parallel()

	var policy struct {
		Version   string
		Statement []struct {
			Effect   string
			Action   string
			Resource string
		}
	}
	require.NoError(t, json.Unmarshal([]byte(publicReadPolicy("medias")), &policy))
	require.Len(t, policy.Statement, 1)
	assert.Equal(t, "Allow", policy.Statement[0].Effect)
	assert.Equal(t, "s3:GetObject", policy.Statement[0].Action)
	assert.Equal(t, "arn:aws:s3:::medias/public/*", policy.Statement[0].Resource)
}

func TestCheckName(t *testing.T) {
	t.Parallel()

	assert.NoError(t, checkName("abc.png"))
	for _, bad := range []string{"", ".", "..", "a/b.png", `a\b.png`, "../x"} {
		assert.ErrorIs(t, checkName(bad), ErrInvalidName, bad)
	}
}

type request struct {
	method      string
	path        string
	contentType string
}

// fakeBucket answers HEAD with headStatus and accepts PUT and DELETE.
type fakeBucket struct {
	headStatus int

	mu       sync.Mutex
	requests []request
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.requests = append(b.requests, request{method: r.Method, path: r.URL.Path, contentType: r.Header.Get("Content-Type")})
	b.mu.Unlock()

	switch r.Method {
	case http.MethodHead:
		if b.headStatus == http.StatusOK {
			w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
			w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
			w.Header().Set("Content-Length", "0")
		}
		w.WriteHeader(b.headStatus)
	case http.MethodPut:
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (b *fakeBucket) methods() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, r := range b.requests {
		out = append(out, r.method)
	}
	return out
}

func (b *fakeBucket) last() request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[len(b.requests)-1]
}

func newMinioAgainst(t *testing.T, bucket *fakeBucket) *MinioStorage {
	t.Helper()
	srv := httptest.NewServer(bucket)
	t.Cleanup(srv.Close)

	s, err := NewMinioStorage(context.Background(), MinioConfig{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "id",
		SecretKey: "secret",
		Bucket:    "medias",
		Region:    "us-east-1",
	}, PublicURLs{ProjectRef: "proj123"}, nil)
	require.NoError(t, err)
	return s
}

func TestMinioStorage_Put(t *testing.T) {
	t.Parallel()

	t.Run("missing object is uploaded under public prefix", func(t *testing.T) {
		t.Parallel()
		bucket := &fakeBucket{headStatus: http.StatusNotFound}
		s := newMinioAgainst(t, bucket)

		key, err := s.Put(context.Background(), "abc.png", strings.NewReader("png"), 3, "image/png")
		require.NoError(t, err)
		assert.Equal(t, media.RemoteKey("abc.png"), key)

		assert.Equal(t, []string{http.MethodHead, http.MethodPut}, bucket.methods())
		put := bucket.last()
		assert.Equal(t, "/medias/public/abc.png", put.path)
		assert.Equal(t, "image/png", put.contentType)
	})

	t.Run("existing object is never replaced", func(t *testing.T) {
		t.Parallel()
		bucket := &fakeBucket{headStatus: http.StatusOK}
		s := newMinioAgainst(t, bucket)

		_, err := s.Put(context.Background(), "abc.png", strings.NewReader("png"), 3, "image/png")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrObjectExists)
		assert.Equal(t, apperr.Storage, apperr.KindOf(err))
		assert.NotContains(t, bucket.methods(), http.MethodPut)
	})

	t.Run("stat failure is a storage error", func(t *testing.T) {
		t.Parallel()
		bucket := &fakeBucket{headStatus: http.StatusForbidden}
		s := newMinioAgainst(t, bucket)

		_, err := s.Put(context.Background(), "abc.png", strings.NewReader("png"), 3, "image/png")
		require.Error(t, err)
		assert.Equal(t, apperr.Storage, apperr.KindOf(err))
		assert.NotErrorIs(t, err, ErrObjectExists)
		assert.NotContains(t, bucket.methods(), http.MethodPut)
	})

	t.Run("invalid name never reaches the bucket", func(t *testing.T) {
		t.Parallel()
		bucket := &fakeBucket{headStatus: http.StatusNotFound}
		s := newMinioAgainst(t, bucket)

		_, err := s.Put(context.Background(), "../abc.png", strings.NewReader("png"), 3, "image/png")
		assert.ErrorIs(t, err, ErrInvalidName)
		assert.Empty(t, bucket.methods())
	})
}

func TestMinioStorage_Delete(t *testing.T) {
	t.Parallel()
	bucket := &fakeBucket{headStatus: http.StatusNotFound}
	s := newMinioAgainst(t, bucket)

	require.NoError(t, s.Delete(context.Background(), media.RemoteKey("abc.png")))
	del := bucket.last()
	assert.Equal(t, http.MethodDelete, del.method)
	assert.Equal(t, "/medias/public/abc.png", del.path)

	assert.ErrorIs(t, s.Delete(context.Background(), media.LocalKey("abc.png")), ErrWrongBackend)
	assert.Len(t, bucket.methods(), 1)
}

func TestMinioStorage_PublicURL(t *testing.T) {
	t.Parallel()
	s := newMinioAgainst(t, &fakeBucket{headStatus: http.StatusNotFound})

	url, err := s.PublicURL(media.RemoteKey("abc.png"))
	require.NoError(t, err)
	assert.Equal(t, media.RemotePublicURL("proj123", "medias", "public/abc.png"), url)
}
