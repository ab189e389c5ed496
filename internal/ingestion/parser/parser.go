// Package parser turns an uploaded document into tabular records or free text.
package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("empty file")
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
	FormatTXT  Format = "txt"
)

// AllFormats lists every format the parser knows, in display order.
var AllFormats = []Format{FormatCSV, FormatXLSX, FormatPDF, FormatTXT}

// UnavailableError reports a known format that has been switched off.
type UnavailableError struct {
	Format Format
}

func (e *UnavailableError) Error() string {
	return strings.ToUpper(string(e.Format)) + " support unavailable"
}

// Result is either tabular rows (CSV, XLSX) or extracted text (PDF, TXT).
type Result struct {
	Records []Record
	Text    string
}

type parseFunc func(data []byte) (Result, error)

// Registry holds the parsers enabled for this process.
type Registry struct {
	enabled map[Format]parseFunc
}

// NewRegistry enables the named formats. Unknown names are ignored; an empty
// list enables everything.
func NewRegistry(formats []string) *Registry {
	all := map[Format]parseFunc{
		FormatCSV:  parseCSV,
		FormatXLSX: parseXLSX,
		FormatPDF:  parsePDF,
		FormatTXT:  parseTXT,
	}
	if len(formats) == 0 {
		return &Registry{enabled: all}
	}
	enabled := map[Format]parseFunc{}
	for _, raw := range formats {
		f := Format(strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "."))))
		if fn, ok := all[f]; ok {
			enabled[f] = fn
		}
	}
	return &Registry{enabled: enabled}
}

func (r *Registry) Enabled(f Format) bool {
	if r == nil {
		return false
	}
	_, ok := r.enabled[f]
	return ok
}

// EnabledFormats returns the enabled formats in display order.
func (r *Registry) EnabledFormats() []Format {
	out := []Format{}
	for _, f := range AllFormats {
		if r.Enabled(f) {
			out = append(out, f)
		}
	}
	return out
}

// DetectFormat maps a file name to a known format by its extension.
func DetectFormat(fileName string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(strings.TrimSpace(fileName))), ".")
	for _, f := range AllFormats {
		if string(f) == ext {
			return f, nil
		}
	}
	return "", ErrUnsupportedFormat
}

// Check validates an upload before any parsing: the extension must be known,
// the body must be non-empty and the format must be enabled.
func (r *Registry) Check(fileName string, data []byte) (Format, error) {
	f, err := DetectFormat(fileName)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if !r.Enabled(f) {
		return "", &UnavailableError{Format: f}
	}
	return f, nil
}

// Parse runs the parser registered for f.
func (r *Registry) Parse(f Format, data []byte) (Result, error) {
	if r == nil {
		return Result{}, &UnavailableError{Format: f}
	}
	fn, ok := r.enabled[f]
	if !ok {
		return Result{}, &UnavailableError{Format: f}
	}
	res, err := fn(data)
	if err != nil {
		return Result{}, fmt.Errorf("parse %s: %w", f, err)
	}
	return res, nil
}

func trimSpace(s string) string { return strings.TrimSpace(s) }
