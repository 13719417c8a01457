package portfolio

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ResumeFile is an accepted upload handed to a ResumeParser.
type ResumeFile struct {
	UserID      string
	Key         string
	Filename    string
	ContentType string
	Size        int64
}

// ResumeParser extracts structured data from a stored resume.
type ResumeParser interface {
	Parse(ctx context.Context, f ResumeFile) (map[string]any, error)
}

// NoopParser accepts every file and extracts nothing.
type NoopParser struct{}

func (NoopParser) Parse(context.Context, ResumeFile) (map[string]any, error) {
	return map[string]any{}, nil
}

// detectResume returns the canonical content type and extension for a pdf or
// docx upload. The extension must agree with the leading bytes.
func detectResume(filename string, head []byte) (contentType, ext string, ok bool) {
	ext = strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		if bytes.HasPrefix(head, []byte("%PDF-")) {
			return contentTypePDF, ext, true
		}
	case ".docx":
		// docx is a zip container.
		if bytes.HasPrefix(head, []byte("PK\x03\x04")) {
			return contentTypeDOCX, ext, true
		}
	}
	return "", "", false
}

// cleanFilename keeps the base name only, for object metadata.
func cleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	if len(name) > 255 {
		name = name[:255]
	}
	return name
}
