// Package storage implements the object stores uploads are written to.
// The backend is picked once at startup: the local disk in development,
// an S3-compatible bucket everywhere else.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/radif/medias/internal/apperr"
	"github.com/radif/medias/internal/config"
	"github.com/radif/medias/internal/media"
)

// New returns the backend selected by cfg. Remote clients are built lazily,
// on the first upload.
func New(cfg *config.Config, log *zap.Logger) (media.Storage, error) {
	if cfg.IsDevelopment() {
		return NewLocalStorage(cfg.UploadsDir)
	}

	return NewLazy(func(ctx context.Context) (media.Storage, error) {
		if err := checkRemoteConfig(cfg); err != nil {
			return nil, err
		}
		urls := PublicURLs{
			Base:       cfg.StoragePublicBase,
			ProjectRef: cfg.ProjectRef,
			Endpoint:   cfg.StorageEndpoint,
			Bucket:     cfg.StorageBucket,
		}
		if err := urls.check(); err != nil {
			return nil, err
		}

		switch cfg.StorageDriver {
		case "minio":
			return NewMinioStorage(ctx, MinioConfig{
				Endpoint:  cfg.StorageEndpoint,
				AccessKey: cfg.StorageAccessKey,
				SecretKey: cfg.StorageSecretKey,
				Bucket:    cfg.StorageBucket,
				Region:    cfg.StorageRegion,
				UseSSL:    cfg.StorageUseSSL,
				Provision: cfg.StorageProvision,
			}, urls, log)
		case "s3", "":
			return NewS3Storage(ctx, S3Config{
				Endpoint:  cfg.StorageEndpoint,
				AccessKey: cfg.StorageAccessKey,
				SecretKey: cfg.StorageSecretKey,
				Bucket:    cfg.StorageBucket,
				Region:    cfg.StorageRegion,
			}, urls)
		default:
			return nil, apperr.ConfigurationError(fmt.Sprintf("unknown STORAGE_DRIVER %q", cfg.StorageDriver))
		}
	}), nil
}

func checkRemoteConfig(cfg *config.Config) error {
	var missing []string
	if cfg.StorageEndpoint == "" {
		missing = append(missing, "STORAGE_ENDPOINT")
	}
	if cfg.StorageSecretKey == "" {
		missing = append(missing, "STORAGE_SECRET_KEY")
	}
	if cfg.StorageAccessKey == "" {
		missing = append(missing, "STORAGE_ACCESS_KEY")
	}
	if len(missing) > 0 {
		return apperr.ConfigurationError(strings.Join(missing, ", ") + " not set")
	}
	return nil
}

// checkName rejects names that would escape the storage prefix.
func checkName(name string) error {
	if name == "" || name != path.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// s3EndpointSuffix ends the managed service's S3-compatible endpoint; the
// public object API lives next to it.
const s3EndpointSuffix = "/storage/v1/s3"

// PublicURLs derives public addresses of remote objects. Base wins over
// ProjectRef, which wins over an Endpoint of the managed service's form.
type PublicURLs struct {
	Base       string // explicit override, e.g. a CDN
	ProjectRef string
	Endpoint   string
	Bucket     string
}

func (p PublicURLs) check() error {
	if p.Base == "" && p.ProjectRef == "" && p.endpointBase() == "" {
		return apperr.ConfigurationError(
			"NEXT_PUBLIC_PROJECT_REF or STORAGE_PUBLIC_BASE not set and STORAGE_ENDPOINT does not end in " + s3EndpointSuffix)
	}
	return nil
}

// endpointBase returns ".../storage/v1" for an endpoint like
// "https://<ref>.supabase.co/storage/v1/s3", or "" otherwise.
func (p PublicURLs) endpointBase() string {
	ep := strings.TrimRight(p.Endpoint, "/")
	if !strings.HasSuffix(ep, s3EndpointSuffix) || !strings.Contains(ep, "://") {
		return ""
	}
	return strings.TrimSuffix(ep, "/s3")
}

// URL returns the public address of a remote key.
func (p PublicURLs) URL(key media.Key) (string, error) {
	if key.Kind != media.KindRemote {
		return "", fmt.Errorf("%w: %s", ErrWrongBackend, key)
	}
	if p.Base != "" {
		return strings.TrimRight(p.Base, "/") + "/" + key.Path, nil
	}
	if p.ProjectRef != "" {
		return media.RemotePublicURL(p.ProjectRef, p.Bucket, key.Path), nil
	}
	if base := p.endpointBase(); base != "" {
		return fmt.Sprintf("%s/object/public/%s/%s", base, p.Bucket, key.Path), nil
	}
	return "", p.check()
}
