package remote

import (
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/printshop/internal/domain/errors"
)

// Path is a parsed remote path. Two textual forms are accepted:
// "remote:dir/name" as produced by rclone and "scheme://bucket/object" as
// produced by the object store backends.
type Path struct {
	Scheme    string
	Qualifier string
	Key       string
}

// ParsePath splits raw into its qualifier and key. Anything else is rejected
// with ErrMalformedRemotePath instead of being guessed at. The key is kept as
// written, so String reproduces raw.
func ParsePath(raw string) (Path, error) {
	raw = strings.TrimSpace(raw)

	if idx := strings.Index(raw, "://"); idx >= 0 {
		scheme, rest := raw[:idx], raw[idx+3:]
		bucket, object, _ := strings.Cut(rest, "/")
		if scheme == "" || bucket == "" || strings.Trim(object, "/") == "" {
			return Path{}, fmt.Errorf("%w: %q", domainErrors.ErrMalformedRemotePath, raw)
		}
		return Path{Scheme: scheme, Qualifier: bucket, Key: object}, nil
	}

	remote, key, ok := strings.Cut(raw, ":")
	if !ok || remote == "" || strings.ContainsAny(remote, "/\\") {
		return Path{}, fmt.Errorf("%w: %q", domainErrors.ErrMalformedRemotePath, raw)
	}
	if strings.TrimPrefix(key, "/") == "" || strings.HasSuffix(key, "/") {
		return Path{}, fmt.Errorf("%w: %q", domainErrors.ErrMalformedRemotePath, raw)
	}
	return Path{Qualifier: remote, Key: key}, nil
}

// Base returns the last element of the key.
func (p Path) Base() string {
	if idx := strings.LastIndex(p.Key, "/"); idx >= 0 {
		return p.Key[idx+1:]
	}
	return p.Key
}

func (p Path) String() string {
	if p.Scheme != "" {
		return p.Scheme + "://" + p.Qualifier + "/" + p.Key
	}
	return p.Qualifier + ":" + p.Key
}

// joinRemote appends name to an rclone remote root such as "yandex:" or
// "yandex:prints".
func joinRemote(root, name string) string {
	name = strings.TrimPrefix(name, "/")
	if strings.HasSuffix(root, ":") || strings.HasSuffix(root, "/") {
		return root + name
	}
	return root + "/" + name
}
