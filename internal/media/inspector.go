package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

const DefaultMaxDimension = 4096

var (
	ErrUnsupportedImage = errors.New("media: unsupported image type")
	ErrImageTooLarge    = errors.New("media: image too large")
	ErrEmptyImage       = errors.New("media: empty image data")
)

type Upload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type Result struct {
	Bytes       []byte
	ContentType string
	Width       int
	Height      int
}

type Processor interface {
	Process(ctx context.Context, upload Upload, maxDimension int) (*Result, error)
}

// Inspector validates uploads by decoding the image header. The bytes are
// passed through untouched; oversize images are rejected rather than resized.
type Inspector struct {
	maxBytes     int64
	maxDimension int
}

func NewInspector(maxBytes int64, maxDimension int) *Inspector {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &Inspector{maxBytes: maxBytes, maxDimension: maxDimension}
}

var formatContentTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

func (i *Inspector) Process(ctx context.Context, upload Upload, maxDimension int) (*Result, error) {
	if upload.Reader == nil {
		return nil, ErrEmptyImage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader := upload.Reader
	if i.maxBytes > 0 {
		if upload.Size > i.maxBytes {
			return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrImageTooLarge, upload.Size, i.maxBytes)
		}
		reader = io.LimitReader(reader, i.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("media: read image: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if i.maxBytes > 0 && int64(len(data)) > i.maxBytes {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrImageTooLarge, i.maxBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	contentType, ok := formatContentTypes[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, format)
	}
	if declared := declaredContentType(upload.ContentType, upload.FileName); declared != "" && declared != contentType {
		return nil, fmt.Errorf("%w: declared %s but found %s", ErrUnsupportedImage, declared, contentType)
	}

	limit := maxDimension
	if limit <= 0 {
		limit = i.maxDimension
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrUnsupportedImage, cfg.Width, cfg.Height)
	}
	if cfg.Width > limit || cfg.Height > limit {
		return nil, fmt.Errorf("%w: %dx%d exceeds %dpx", ErrImageTooLarge, cfg.Width, cfg.Height, limit)
	}

	return &Result{
		Bytes:       data,
		ContentType: contentType,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

// Extension returns the file extension used for stored objects of a content type.
func Extension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func declaredContentType(value, fileName string) string {
	ct := strings.ToLower(strings.TrimSpace(value))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	if ct == "image/jpg" {
		ct = "image/jpeg"
	}
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(fileName)))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case "":
		return ""
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return strings.ToLower(mt)
	}
	return ""
}
