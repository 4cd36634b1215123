// Package media stores uploaded images (product photos, payment proofs) on a
// filesystem and maps stored names to the public URLs embedded in records.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// PublicPath is where the HTTP layer exposes the store.
const PublicPath = "/uploads/"

// Upload is one incoming file. Open may be called more than once.
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

func FromBytes(filename string, b []byte) Upload {
	return Upload{
		Filename: filename,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(b)), nil
		},
	}
}

type Store interface {
	Save(ctx context.Context, up Upload) (name string, err error)
	Delete(ctx context.Context, name string) error
}

type FileStore struct {
	fs  afero.Fs
	now func() time.Time
}

// NewFileStore roots the store at dir on the OS filesystem, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	osfs := afero.NewOsFs()
	if err := osfs.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.Storage("create upload dir", err)
	}
	return NewFileStoreFs(afero.NewBasePathFs(osfs, dir)), nil
}

func NewFileStoreFs(fsys afero.Fs) *FileStore {
	return &FileStore{fs: fsys, now: time.Now}
}

// Fs exposes the backing filesystem so it can be served over HTTP.
func (s *FileStore) Fs() afero.Fs { return s.fs }

func (s *FileStore) Save(ctx context.Context, up Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r, err := up.Open()
	if err != nil {
		return "", apperr.Storage("open upload", err)
	}
	defer r.Close()

	name := fmt.Sprintf("%d-%s-%s", s.now().UnixMilli(), uuid.NewString()[:8], cleanName(up.Filename))
	if err := afero.WriteReader(s.fs, "/"+name, r); err != nil {
		return "", apperr.Storage("write upload", err)
	}
	return name, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validName(name) {
		return apperr.Invalid("name", "invalid media name")
	}
	if err := s.fs.Remove("/" + name); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.NotFound("media", name)
		}
		return apperr.Storage("remove upload", err)
	}
	return nil
}

// RequireImage sniffs the upload content and rejects anything that is not an image.
func RequireImage(up Upload) error {
	r, err := up.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", up.Filename, err)
	}
	defer r.Close()
	m, err := mimetype.DetectReader(r)
	if err != nil {
		return fmt.Errorf("detect %s: %w", up.Filename, err)
	}
	if !strings.HasPrefix(m.String(), "image/") {
		return fmt.Errorf("%s is %s, not an image", up.Filename, m.String())
	}
	return nil
}

// URL builds the absolute URL stored on records, e.g. http://host:4000/uploads/<name>.
func URL(baseURL, name string) string {
	return strings.TrimRight(baseURL, "/") + PublicPath + url.PathEscape(name)
}

// NameFromURL reverses URL. Relative /uploads/ paths from older records are accepted too.
func NameFromURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || !strings.HasPrefix(u.Path, PublicPath) {
		return "", false
	}
	name := path.Base(u.Path)
	if !validName(name) {
		return "", false
	}
	return name, true
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." && name == filepath.Base(name) && !strings.ContainsAny(name, `/\`)
}

func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), ".-")
	if out == "" {
		return "file"
	}
	return out
}
