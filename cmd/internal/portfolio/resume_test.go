package portfolio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectResume(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		head     string
		wantType string
		wantOK   bool
	}{
		{"pdf", "cv.pdf", "%PDF-1.7", contentTypePDF, true},
		{"pdf upper ext", "CV.PDF", "%PDF-1.4", contentTypePDF, true},
		{"docx", "cv.docx", "PK\x03\x04rest", contentTypeDOCX, true},
		{"pdf ext with zip bytes", "cv.pdf", "PK\x03\x04", "", false},
		{"docx ext with pdf bytes", "cv.docx", "%PDF-", "", false},
		{"legacy doc", "cv.doc", "\xd0\xcf\x11\xe0", "", false},
		{"no ext", "resume", "%PDF-", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, _, ok := detectResume(tt.filename, []byte(tt.head))
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.wantType, ct)
		})
	}
}

func TestCleanFilename(t *testing.T) {
	tests := map[string]string{
		"cv.pdf":              "cv.pdf",
		"../../etc/passwd":    "passwd",
		`C:\Users\ada\cv.pdf`: "cv.pdf",
		"bad\x00name.pdf":     "badname.pdf",
	}
	for in, want := range tests {
		require.Equal(t, want, cleanFilename(in), "input %q", in)
	}
}
