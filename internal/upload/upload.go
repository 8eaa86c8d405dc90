// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package upload validates cover and inline images and hands them to a
// storage backend (local disk or S3), returning the public URL.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // register WebP decoder

	"mochireviews/internal/models"
)

const (
	// MaxSize is the largest accepted upload (8 MiB).
	MaxSize = 8 << 20

	// maxImagePixels caps decoded dimensions to prevent memory bombs.
	maxImagePixels = 50_000_000
)

// Upload errors. All are *models.ValidationError on the "file" field so
// handlers answer 400 with the message.
var (
	ErrNoFile          = &models.ValidationError{Field: "file", Message: "No file provided"}
	ErrUnsupportedType = &models.ValidationError{Field: "file", Message: "File type not allowed. Use JPEG, PNG, WebP, GIF, or AVIF."}
	ErrTooLarge        = &models.ValidationError{Field: "file", Message: "File too large. Maximum size is 8MB."}
	ErrInvalidImage    = &models.ValidationError{Field: "file", Message: "File is not a valid image."}
)

// allowedTypes maps accepted MIME types to the format name reported by
// image.DecodeConfig and the fallback extension.
var allowedTypes = map[string]struct {
	format string
	ext    string
}{
	"image/jpeg": {"jpeg", ".jpg"},
	"image/png":  {"png", ".png"},
	"image/webp": {"webp", ".webp"},
	"image/gif":  {"gif", ".gif"},
	"image/avif": {"avif", ".avif"},
}

// Backend stores an object under name and returns its public URL.
type Backend interface {
	Put(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error)
}

// Service validates uploads and writes them to a Backend.
type Service struct {
	backend Backend
	now     func() time.Time
	newID   func() string
}

// New creates an upload Service writing to backend.
func New(backend Backend) *Service {
	return &Service{
		backend: backend,
		now:     time.Now,
		newID:   func() string { return uuid.NewString()[:8] },
	}
}

// Upload validates data against the allow-list, size ceiling and image
// probe, stores it under a fresh unique name and returns the public URL.
// Validation failures are returned as the Err* values above.
func (s *Service) Upload(ctx context.Context, data []byte, declaredType, filename string) (string, error) {
	if len(data) == 0 {
		return "", ErrNoFile
	}

	contentType := strings.ToLower(strings.TrimSpace(declaredType))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	allowed, ok := allowedTypes[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}

	if len(data) > MaxSize {
		return "", ErrTooLarge
	}

	if err := probe(data, allowed.format); err != nil {
		return "", err
	}

	name := s.filename(filename, allowed.ext)
	url, err := s.backend.Put(ctx, name, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("store upload %s: %w", name, err)
	}
	return url, nil
}

// filename builds "<unix-millis>-<id><ext>", taking the extension from the
// original name when it has a sane one.
func (s *Service) filename(original, fallbackExt string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if !validExt(ext) {
		ext = fallbackExt
	}
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), s.newID(), ext)
}

func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 6 {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// probe checks that data really is an image of the declared format.
// AVIF has no Go decoder, so only its ISO-BMFF brand is checked.
func probe(data []byte, format string) error {
	if format == "avif" {
		if len(data) < 12 || string(data[4:8]) != "ftyp" {
			return ErrInvalidImage
		}
		if brand := string(data[8:12]); brand != "avif" && brand != "avis" {
			return ErrInvalidImage
		}
		return nil
	}

	cfg, got, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || got != format {
		return ErrInvalidImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ErrInvalidImage
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return ErrTooLarge
	}
	return nil
}
