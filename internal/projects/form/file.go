package form

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxImageSize is the largest accepted image, in bytes.
const MaxImageSize int64 = 10 << 20

const defaultExt = "jpg"

// File is a locally selected image that has not been uploaded yet.
type File struct {
	Name        string
	ContentType string
	Size        int64

	open func() (io.ReadCloser, error)
}

func NewFile(name, contentType string, data []byte) File {
	return File{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func FromMultipart(fh *multipart.FileHeader) File {
	return File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func (f File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("file %s has no content", f.Name)
	}
	return f.open()
}

// Rejection explains why a single file was not staged.
type Rejection struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func (r Rejection) Error() string {
	return r.Name + ": " + r.Reason
}

// Validate checks that f is an image no larger than limit. A missing or
// generic content type is replaced by one sniffed from the content.
func Validate(f *File, limit int64) *Rejection {
	if limit <= 0 {
		limit = MaxImageSize
	}

	ct := mediaType(f.ContentType)
	if ct == "" || ct == "application/octet-stream" {
		sniffed, err := sniff(*f)
		if err != nil {
			return &Rejection{Name: f.Name, Reason: "could not be read"}
		}
		ct = sniffed
		f.ContentType = sniffed
	}

	if !strings.HasPrefix(ct, "image/") {
		return &Rejection{Name: f.Name, Reason: "is not an image"}
	}
	if f.Size > limit {
		return &Rejection{Name: f.Name, Reason: fmt.Sprintf("is larger than %dMB", limit>>20)}
	}
	return nil
}

// StorageName returns a collision-free object name that keeps the original
// extension, or jpg when there is none.
func StorageName(original string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(original), "."))
	if ext == "" {
		ext = defaultExt
	}
	return uuid.NewString() + "." + ext
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mt
}

func sniff(f File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	m, err := mimetype.DetectReader(rc)
	if err != nil {
		return "", err
	}
	return mediaType(m.String()), nil
}
