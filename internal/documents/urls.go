package documents

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Document types accepted by BuildDocumentURL
const (
	Type510kSummary   = "510k_summary"
	TypeDenovo        = "denovo_decision"
	TypePMAApproval   = "pma_approval"
	TypePMASSED       = "pma_ssed"
	TypePMASupplement = "pma_supplement"
)

// DocumentTypes lists the accepted document types in display order
var DocumentTypes = []string{
	Type510kSummary,
	TypeDenovo,
	TypePMAApproval,
	TypePMASSED,
	TypePMASupplement,
}

const accessDataBase = "https://www.accessdata.fda.gov/cdrh_docs"

var (
	kNumberPattern   = regexp.MustCompile(`^K\d{6,7}$`)
	denNumberPattern = regexp.MustCompile(`^DEN\d{6,7}$`)
	pmaNumberPattern = regexp.MustCompile(`^P\d{6,7}$`)
)

// ErrSupplementRequired is returned for pma_supplement requests without a
// supplement number.
var ErrSupplementRequired = errors.New("supplement_number is required for pma_supplement documents.")

// BuildDocumentURL maps a document type and submission number to the
// accessdata.fda.gov PDF location. The submission number is trimmed and
// upper-cased before validation.
func BuildDocumentURL(documentType, submissionNumber, supplementNumber string) (string, error) {
	number := strings.ToUpper(strings.TrimSpace(submissionNumber))

	switch documentType {
	case Type510kSummary:
		if !kNumberPattern.MatchString(number) {
			return "", &InvalidIdentifierError{Identifier: number, Expected: "K followed by 6-7 digits (e.g., K213456)"}
		}
		return fmt.Sprintf("%s/reviews/%s.pdf", accessDataBase, number), nil

	case TypeDenovo:
		if !denNumberPattern.MatchString(number) {
			return "", &InvalidIdentifierError{Identifier: number, Expected: "DEN followed by 6-7 digits (e.g., DEN200001)"}
		}
		return fmt.Sprintf("%s/reviews/%s.pdf", accessDataBase, number), nil

	case TypePMAApproval, TypePMASSED, TypePMASupplement:
		if !pmaNumberPattern.MatchString(number) {
			return "", &InvalidIdentifierError{Identifier: number, Expected: "P followed by 6-7 digits (e.g., P200001)"}
		}
		// P200001 was filed in 2020 and lives under pdf20/
		base := fmt.Sprintf("%s/pdf%s", accessDataBase, number[1:3])

		switch documentType {
		case TypePMAApproval:
			return fmt.Sprintf("%s/%sA.pdf", base, number), nil
		case TypePMASSED:
			return fmt.Sprintf("%s/%sB.pdf", base, number), nil
		default:
			supplement := strings.TrimSpace(supplementNumber)
			if supplement == "" {
				return "", ErrSupplementRequired
			}
			return fmt.Sprintf("%s/%sS%sA.pdf", base, number, zeroPad(supplement, 3)), nil
		}
	}

	return "", &InvalidIdentifierError{Identifier: documentType, Expected: "valid document_type"}
}

// zeroPad left-pads s with zeros to width, leaving longer strings alone
func zeroPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
