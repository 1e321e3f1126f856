package media

import (
	"fmt"
	"strings"
)

// KeyKind tells which backend holds the bytes behind a Key.
type KeyKind int

const (
	// KindUnknown is a legacy or malformed key that matches no backend prefix.
	KindUnknown KeyKind = iota
	// KindLocal is a file under the public uploads directory.
	KindLocal
	// KindRemote is an object in the storage bucket.
	KindRemote
)

func (k KeyKind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindRemote:
		return "remote"
	default:
		return "unknown"
	}
}

const (
	// LocalPrefix starts keys of files on the local disk.
	LocalPrefix = "uploads/"
	// RemotePrefix starts keys of objects in the storage bucket.
	RemotePrefix = "public/"
)

// Key is a storage locator tagged with its backend at write time.
type Key struct {
	Kind KeyKind
	Path string // persisted form, e.g. "uploads/abc.png" or "public/abc.png"
}

// LocalKey returns the key for a file named name in the uploads directory.
func LocalKey(name string) Key {
	return Key{Kind: KindLocal, Path: LocalPrefix + name}
}

// RemoteKey returns the bucket key for an object named name.
func RemoteKey(name string) Key {
	return Key{Kind: KindRemote, Path: RemotePrefix + name}
}

// String returns the form stored in the medias table.
func (k Key) String() string { return k.Path }

// Name returns the file name without the backend prefix.
func (k Key) Name() string {
	switch k.Kind {
	case KindLocal:
		return strings.TrimPrefix(k.Path, LocalPrefix)
	case KindRemote:
		return strings.TrimPrefix(k.Path, RemotePrefix)
	default:
		return k.Path
	}
}

// ParseKey recovers the tag of a key read back from the medias table.
func ParseKey(raw string) Key {
	switch {
	case strings.HasPrefix(raw, LocalPrefix):
		return Key{Kind: KindLocal, Path: raw}
	case strings.HasPrefix(raw, "/"+LocalPrefix):
		return Key{Kind: KindLocal, Path: raw[1:]}
	case strings.HasPrefix(raw, RemotePrefix):
		return Key{Kind: KindRemote, Path: raw}
	default:
		return Key{Kind: KindUnknown, Path: raw}
	}
}

// RemotePublicURL is the canonical public address of an object in a bucket of
// the managed storage project ref.
func RemotePublicURL(projectRef, bucket, key string) string {
	return fmt.Sprintf("https://%s.supabase.co/storage/v1/object/public/%s/%s", projectRef, bucket, key)
}
