package errors

import (
	stderrors "errors"
	"fmt"
)

// PDFError describes a failure to read a downloaded document, with enough
// context to tell a broken file apart from a missing toolchain.
type PDFError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Context    string    `json:"context,omitempty"`
	FilePath   string    `json:"file_path,omitempty"`
	PageNumber int       `json:"page_number,omitempty"`
	Err        error     `json:"-"`
}

// ErrorType represents different categories of extraction errors
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeInvalidHeader
	ErrorTypeCorruptedStructure
	ErrorTypeParserPanic
	ErrorTypeEncrypted
	ErrorTypeUnsupportedFeature
	ErrorTypeRasterizeFailed
	ErrorTypeRecognizeFailed
	ErrorTypeOCRUnavailable
	ErrorTypeIO
)

// Error implements the error interface
func (e *PDFError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
	if e.PageNumber > 0 {
		msg += fmt.Sprintf(" (page %d)", e.PageNumber)
	}
	if e.Context != "" {
		msg += ": " + e.Context
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *PDFError) Unwrap() error {
	return e.Err
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeInvalidHeader:
		return "INVALID_HEADER"
	case ErrorTypeCorruptedStructure:
		return "CORRUPTED_STRUCTURE"
	case ErrorTypeParserPanic:
		return "PARSER_PANIC"
	case ErrorTypeEncrypted:
		return "ENCRYPTED"
	case ErrorTypeUnsupportedFeature:
		return "UNSUPPORTED_FEATURE"
	case ErrorTypeRasterizeFailed:
		return "RASTERIZE_FAILED"
	case ErrorTypeRecognizeFailed:
		return "RECOGNIZE_FAILED"
	case ErrorTypeOCRUnavailable:
		return "OCR_UNAVAILABLE"
	case ErrorTypeIO:
		return "IO"
	default:
		return "UNKNOWN"
	}
}

// IsStructural reports whether the error type means the file itself cannot be
// parsed as a PDF, as opposed to a failure of local tooling.
func (et ErrorType) IsStructural() bool {
	switch et {
	case ErrorTypeInvalidHeader, ErrorTypeCorruptedStructure, ErrorTypeParserPanic,
		ErrorTypeEncrypted, ErrorTypeUnsupportedFeature:
		return true
	default:
		return false
	}
}

// NewPDFError creates a new PDFError
func NewPDFError(errorType ErrorType, message string) *PDFError {
	return &PDFError{
		Type:    errorType,
		Message: message,
	}
}

// WrapError wraps a standard error as a PDFError
func WrapError(errorType ErrorType, message string, err error) *PDFError {
	e := &PDFError{
		Type:    errorType,
		Message: message,
		Err:     err,
	}
	if err != nil {
		e.Context = err.Error()
	}
	return e
}

// WithContext adds context to an existing PDFError
func (e *PDFError) WithContext(context string) *PDFError {
	e.Context = context
	return e
}

// WithFile adds file path information to an existing PDFError
func (e *PDFError) WithFile(filePath string) *PDFError {
	e.FilePath = filePath
	return e
}

// WithPage adds page number information to an existing PDFError
func (e *PDFError) WithPage(pageNumber int) *PDFError {
	e.PageNumber = pageNumber
	return e
}

// IsStructural reports whether err is, or wraps, a PDFError whose type marks
// the document itself as unreadable.
func IsStructural(err error) bool {
	var pdfErr *PDFError
	if !stderrors.As(err, &pdfErr) {
		return false
	}
	return pdfErr.Type.IsStructural()
}

// FromPanic converts a recovered parser panic into a PDFError.
func FromPanic(recovered any, filePath string) *PDFError {
	return NewPDFError(ErrorTypeParserPanic, "PDF parser failed").
		WithContext(fmt.Sprint(recovered)).
		WithFile(filePath)
}
