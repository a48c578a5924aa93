package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"

	pdferrors "github.com/a3tai/fda-mcp/internal/pdf/errors"
)

// headerWindow is how far into the file the %PDF- marker may appear. Readers
// tolerate leading garbage up to this offset.
const headerWindow = 1024

var pdfMagic = []byte("%PDF-")

// Validator performs cheap checks on a file before it is handed to a parser
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile checks that path is a non-empty regular file within the size
// limit whose header carries the PDF marker.
func (v *Validator) ValidateFile(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidHeader, "file is empty").WithFile(filePath)
	}

	if v.maxFileSize > 0 && fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("cannot open file: %w", err)
	}
	defer f.Close()

	head := make([]byte, headerWindow)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return pdferrors.WrapError(pdferrors.ErrorTypeIO, "cannot read file header", err).WithFile(filePath)
	}

	if !HasPDFHeader(head[:n]) {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidHeader, "missing %PDF- header").WithFile(filePath)
	}

	return nil
}

// HasPDFHeader reports whether the PDF marker occurs within the leading bytes
// of data.
func HasPDFHeader(data []byte) bool {
	if len(data) > headerWindow {
		data = data[:headerWindow]
	}
	return bytes.Contains(data, pdfMagic)
}
