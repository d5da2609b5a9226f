// Package media stores uploaded audio and image assets in a blob bucket
// under the media/ prefix and resolves them to public URLs.
package media

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"
)

type Kind string

const (
	KindAudio Kind = "audio"
	KindImage Kind = "image"
)

// Prefix holds every uploaded asset. Thumbnails live under ThumbPrefix so
// they never show up in media listings.
const (
	Prefix      = "media/"
	ThumbPrefix = "thumbs/"
)

var (
	uploadExts = map[Kind][]string{
		KindAudio: {".mp3", ".wav"},
		KindImage: {".jpg", ".jpeg", ".png"},
	}
	// The picker also displays images uploaded by other tools.
	pickerExts = map[Kind][]string{
		KindAudio: {".mp3", ".wav"},
		KindImage: {".jpg", ".jpeg", ".png", ".gif", ".webp"},
	}
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindAudio:
		return KindAudio, nil
	case KindImage:
		return KindImage, nil
	}
	return "", fmt.Errorf("%w: unknown media kind %q", ErrUnsupportedFileType, s)
}

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// Accepts reports whether name may be uploaded as kind.
func Accepts(kind Kind, name string) bool {
	return hasExt(name, uploadExts[kind])
}

// Lists reports whether the picker shows name for kind.
func Lists(kind Kind, name string) bool {
	return hasExt(name, pickerExts[kind])
}

// Sanitize replaces every character outside [A-Za-z0-9._-] with '_'.
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ObjectName returns the storage name media/<unix_ms>_<sanitized name>.
func ObjectName(t time.Time, name string) string {
	return Prefix + strconv.FormatInt(t.UnixMilli(), 10) + "_" + Sanitize(path.Base(name))
}

// ThumbName returns the thumbnail object for a media object. The source
// extension is kept so x.png and x.jpg get distinct thumbnails.
func ThumbName(object string) string {
	return ThumbPrefix + path.Base(object) + ".jpg"
}

var (
	ErrUnsupportedFileType = errors.New("media: unsupported file type")
	ErrUploadFailed        = errors.New("media: upload failed")
	// ErrUnresolvableReference means a URL does not map to an object in
	// the bucket. Remove logs it and carries on.
	ErrUnresolvableReference = errors.New("media: url does not reference a stored object")
)

type UnsupportedFileTypeError struct {
	Name string
	Kind Kind
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("%q is not an accepted %s file (allowed: %s)", e.Name, e.Kind, strings.Join(uploadExts[e.Kind], ", "))
}

func (e *UnsupportedFileTypeError) Is(target error) bool { return target == ErrUnsupportedFileType }

type UploadError struct {
	Name string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Name, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

func (e *UploadError) Is(target error) bool { return target == ErrUploadFailed }
