package media

import (
	"strings"

	"go.uber.org/zap"

	"github.com/radif/medias/internal/apperr"
)

// DefaultBucket is the bucket remote keys are resolved against.
const DefaultBucket = "medias"

// Resolver turns stored keys back into fetchable URLs.
type Resolver struct {
	ProjectRef string
	Bucket     string
	Log        *zap.Logger
}

// NewResolver creates a Resolver for the given project ref.
func NewResolver(projectRef string, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{ProjectRef: projectRef, Bucket: DefaultBucket, Log: log}
}

// URL resolves a raw key as stored in the medias table.
// An empty key resolves to an empty URL.
func (r *Resolver) URL(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	r.Log.Debug("resolve media key", zap.String("key", raw))
	return r.KeyURL(ParseKey(raw))
}

// KeyURL renders a tagged key.
func (r *Resolver) KeyURL(k Key) (string, error) {
	switch k.Kind {
	case KindLocal:
		return "/" + k.Path, nil
	case KindRemote:
		if r.ProjectRef == "" {
			return "", apperr.ConfigurationError("NEXT_PUBLIC_PROJECT_REF is not set")
		}
		return RemotePublicURL(r.ProjectRef, r.bucket(), k.Path), nil
	default:
		if k.Path == "" {
			return "", nil
		}
		if !strings.HasPrefix(k.Path, "/") && !strings.HasPrefix(k.Path, "http") {
			return "/" + k.Path, nil
		}
		return k.Path, nil
	}
}

func (r *Resolver) bucket() string {
	if r.Bucket == "" {
		return DefaultBucket
	}
	return r.Bucket
}
