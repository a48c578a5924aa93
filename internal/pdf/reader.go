package pdf

import (
	"errors"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	pdferrors "github.com/a3tai/fda-mcp/internal/pdf/errors"
)

// Reader extracts the embedded text layer of a PDF without rendering it
type Reader struct {
	logger zerolog.Logger
}

// NewReader creates a new text layer reader
func NewReader(logger zerolog.Logger) *Reader {
	return &Reader{logger: logger}
}

// ReadText walks every page and returns the concatenated page texts, each
// followed by a newline, together with the document's page count. Pages with
// no text layer contribute an empty line; that is not an error.
func (r *Reader) ReadText(path string) (text string, pageCount int, err error) {
	// ledongthuc/pdf panics on some malformed object graphs
	defer func() {
		if rec := recover(); rec != nil {
			text, pageCount = "", 0
			err = pdferrors.FromPanic(rec, path)
		}
	}()

	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		errType := pdferrors.ErrorTypeCorruptedStructure
		if errors.Is(err, pdf.ErrInvalidPassword) {
			errType = pdferrors.ErrorTypeEncrypted
		}
		return "", 0, pdferrors.WrapError(errType, "failed to open PDF", err).WithFile(path)
	}
	defer f.Close()

	pageCount = pdfReader.NumPage()

	var builder strings.Builder
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		builder.WriteString(r.pageText(pdfReader, pageNum))
		builder.WriteString("\n")
	}

	return builder.String(), pageCount, nil
}

func (r *Reader) pageText(pdfReader *pdf.Reader, pageNum int) string {
	page := pdfReader.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}

	content, err := page.GetPlainText(nil)
	if err != nil {
		// One undecodable page should not sink the whole document
		r.logger.Debug().Err(err).Int("page", pageNum).Msg("page text extraction failed")
		return ""
	}
	return content
}
