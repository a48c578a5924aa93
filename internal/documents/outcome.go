package documents

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// minTextChars is the trimmed text length below which a document is treated
// as scanned.
const minTextChars = 100

// Method records how the text of a document was obtained
type Method int

const (
	// MethodNone means no usable text was recovered
	MethodNone Method = iota
	MethodText
	MethodOCR
)

func (m Method) String() string {
	switch m {
	case MethodText:
		return "text extraction"
	case MethodOCR:
		return "OCR (scanned document)"
	default:
		return "none"
	}
}

// ExtractionResult is the outcome of running extraction on one document
type ExtractionResult struct {
	Text      string
	PageCount int
	Method    Method
}

type extractionState int

const (
	stateDirect extractionState = iota
	stateOCRFallback
	stateDegradedNoOCR
)

func (s extractionState) String() string {
	switch s {
	case stateDirect:
		return "direct"
	case stateOCRFallback:
		return "ocr_fallback"
	default:
		return "degraded_no_ocr"
	}
}

// decide picks the extraction path from the text layer result
func decide(text string, ocrAvailable bool) extractionState {
	if utf8.RuneCountInString(strings.TrimSpace(text)) >= minTextChars {
		return stateDirect
	}
	if ocrAvailable {
		return stateOCRFallback
	}
	return stateDegradedNoOCR
}

// Render formats a result for the caller. Text is clipped to maxLength
// characters and annotated with its source, page count and method.
func Render(url string, result ExtractionResult, maxLength int) string {
	if result.Method == MethodNone {
		return fmt.Sprintf("Source: %s\n"+
			"Pages: %d\n"+
			"This appears to be a scanned document. Text extraction returned no content.\n"+
			"Install tesseract-ocr and poppler-utils for OCR support:\n"+
			"  macOS: brew install tesseract poppler\n"+
			"  Linux: apt install tesseract-ocr poppler-utils\n",
			url, result.PageCount)
	}

	text, truncated := truncateChars(result.Text, maxLength)

	var header strings.Builder
	fmt.Fprintf(&header, "Source: %s\nPages: %d\nExtraction: %s\n", url, result.PageCount, result.Method)
	if truncated {
		fmt.Fprintf(&header, "[Truncated to %d chars. Full document is longer. "+
			"Call again with a larger max_length to see more.]\n", maxLength)
	}

	return header.String() + "\n" + text
}

// truncateChars keeps the first n code points of s
func truncateChars(s string, n int) (string, bool) {
	if utf8.RuneCountInString(s) <= n {
		return s, false
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i], true
		}
		count++
	}
	return s, false
}
