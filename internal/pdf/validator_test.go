package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/a3tai/fda-mcp/internal/pdf/errors"
	"github.com/a3tai/fda-mcp/internal/pdf/pdftest"
)

func TestValidator_ValidateFile(t *testing.T) {
	dir := t.TempDir()

	write := func(name string, data []byte) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, data, 0o600))
		return p
	}

	validPDF := write("valid.pdf", pdftest.Build("hello"))
	leadingJunk := write("junk.pdf", append([]byte("garbage before header\n"), pdftest.Build("x")...))
	empty := write("empty.pdf", nil)
	html := write("page.pdf", []byte("<html><head><title>Not Found</title></head></html>"))
	large := write("large.pdf", append([]byte("%PDF-1.4\n"), make([]byte, 4096)...))

	tests := []struct {
		name       string
		path       string
		maxSize    int64
		wantErr    bool
		structural bool
	}{
		{name: "valid pdf", path: validPDF, maxSize: 1 << 20},
		{name: "header after leading bytes", path: leadingJunk, maxSize: 1 << 20},
		{name: "no size limit", path: validPDF},
		{name: "empty path", path: "", wantErr: true},
		{name: "missing file", path: filepath.Join(dir, "missing.pdf"), wantErr: true},
		{name: "directory", path: dir, wantErr: true},
		{name: "empty file", path: empty, wantErr: true, structural: true},
		{name: "html body", path: html, wantErr: true, structural: true},
		{name: "over size limit", path: large, maxSize: 1024, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidator(tt.maxSize).ValidateFile(tt.path)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.structural, pdferrors.IsStructural(err))
		})
	}
}

func TestHasPDFHeader(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"plain header", []byte("%PDF-1.7\n"), true},
		{"header after preamble", append([]byte("\xef\xbb\xbf  "), []byte("%PDF-1.4")...), true},
		{"html", []byte("<!DOCTYPE html>"), false},
		{"empty", nil, false},
		{"header beyond window", append(make([]byte, headerWindow), []byte("%PDF-1.4")...), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasPDFHeader(tt.data))
		})
	}
}
