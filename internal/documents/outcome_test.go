package documents

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	long := strings.Repeat("a", minTextChars)
	short := strings.Repeat("a", minTextChars-1)
	padded := "\n\n   " + short + "   \n"

	tests := []struct {
		name string
		text string
		ocr  bool
		want extractionState
	}{
		{"enough text", long, false, stateDirect},
		{"enough text with ocr", long, true, stateDirect},
		{"short text with ocr", short, true, stateOCRFallback},
		{"short text without ocr", short, false, stateDegradedNoOCR},
		{"whitespace does not count", padded, true, stateOCRFallback},
		{"empty", "", false, stateDegradedNoOCR},
		{"short multibyte text with ocr", strings.Repeat("医", 60), true, stateOCRFallback},
		{"short multibyte text without ocr", strings.Repeat("医", 60), false, stateDegradedNoOCR},
		{"enough multibyte text", strings.Repeat("é", minTextChars), false, stateDirect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decide(tt.text, tt.ocr))
		})
	}
}

func TestRender(t *testing.T) {
	const url = "https://www.accessdata.fda.gov/cdrh_docs/reviews/K213456.pdf"

	t.Run("not truncated", func(t *testing.T) {
		got := Render(url, ExtractionResult{Text: "hello world", PageCount: 2, Method: MethodText}, 100)
		assert.Equal(t, "Source: "+url+"\nPages: 2\nExtraction: text extraction\n\nhello world", got)
	})

	t.Run("exact length is not truncated", func(t *testing.T) {
		got := Render(url, ExtractionResult{Text: "12345", PageCount: 1, Method: MethodText}, 5)
		assert.NotContains(t, got, "[Truncated")
		assert.True(t, strings.HasSuffix(got, "\n\n12345"))
	})

	t.Run("truncated", func(t *testing.T) {
		got := Render(url, ExtractionResult{Text: strings.Repeat("x", 12000), PageCount: 14, Method: MethodText}, 8000)
		header, body, found := strings.Cut(got, "\n\n")
		assert.True(t, found)
		assert.Contains(t, header, "Pages: 14")
		assert.Contains(t, header, "[Truncated to 8000 chars. Full document is longer. Call again with a larger max_length to see more.]")
		assert.Len(t, body, 8000)
	})

	t.Run("ocr", func(t *testing.T) {
		got := Render(url, ExtractionResult{Text: "\n--- Page 1 ---\nscan", PageCount: 1, Method: MethodOCR}, 8000)
		assert.Contains(t, got, "Extraction: OCR (scanned document)\n")
	})

	t.Run("degraded", func(t *testing.T) {
		got := Render(url, ExtractionResult{PageCount: 3, Method: MethodNone}, 10)
		want := "Source: " + url + "\n" +
			"Pages: 3\n" +
			"This appears to be a scanned document. Text extraction returned no content.\n" +
			"Install tesseract-ocr and poppler-utils for OCR support:\n" +
			"  macOS: brew install tesseract poppler\n" +
			"  Linux: apt install tesseract-ocr poppler-utils\n"
		assert.Equal(t, want, got)
	})
}

func TestTruncateChars(t *testing.T) {
	tests := []struct {
		name          string
		in            string
		n             int
		want          string
		wantTruncated bool
	}{
		{"ascii", "abcdef", 3, "abc", true},
		{"multibyte counted as one", "µg/mL dosage", 5, "µg/mL", true},
		{"shorter than limit", "ok", 5, "ok", false},
		{"equal to limit", "héllo", 5, "héllo", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := truncateChars(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantTruncated, truncated)
		})
	}
}
