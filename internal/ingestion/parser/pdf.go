package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrMalformedPDF wraps a panic raised by the pdf library while it resolves
// the document structure.
var ErrMalformedPDF = errors.New("malformed pdf")

func parsePDF(data []byte) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = Result{}, fmt.Errorf("%w: %v", ErrMalformedPDF, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("pdf reader: %w", err)
	}

	n := r.NumPage()
	chunks := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		chunks = append(chunks, pageText(r, i))
	}
	return Result{Text: strings.TrimSpace(strings.Join(chunks, "\n"))}, nil
}

// pageText extracts one page, yielding "" for pages the library cannot read.
func pageText(r *pdf.Reader, i int) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	p := r.Page(i)
	if p.V.IsNull() {
		return ""
	}
	s, err := p.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return s
}
