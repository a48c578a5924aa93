package pdf

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	pdferrors "github.com/a3tai/fda-mcp/internal/pdf/errors"
)

// Info is the structural summary pdfcpu can give for a document
type Info struct {
	PageCount int
	Version   string
	Encrypted bool
}

// Inspect reads the cross-reference structure of a PDF with pdfcpu in relaxed
// mode. It is used as a second opinion when the text reader refuses a file.
func Inspect(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeIO, "failed to open file", err).WithFile(path)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := readContext(f, conf)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeCorruptedStructure,
			"failed to read PDF structure", err).WithFile(path)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeCorruptedStructure,
			"failed to determine page count", err).WithFile(path)
	}

	info := &Info{
		PageCount: ctx.PageCount,
		Encrypted: ctx.Encrypt != nil,
	}
	if ctx.HeaderVersion != nil {
		info.Version = ctx.HeaderVersion.String()
	}
	return info, nil
}

// readContext guards against panics inside pdfcpu's parser
func readContext(f *os.File, conf *model.Configuration) (ctx *model.Context, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ctx, err = nil, fmt.Errorf("pdfcpu panic: %v", rec)
		}
	}()
	return api.ReadContext(f, conf)
}
