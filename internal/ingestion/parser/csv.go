package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func parseCSV(data []byte) (Result, error) {
	text, err := decodeCSVText(data)
	if err != nil {
		return Result{}, err
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return Result{Records: []Record{}}, nil
	}
	if err != nil {
		return Result{}, err
	}

	records := []Record{}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, err
		}
		rec := NewRecord(header, row)
		if rec.blank() {
			continue
		}
		records = append(records, rec)
	}
	return Result{Records: records}, nil
}

// decodeCSVText prefers UTF-8 (dropping a leading BOM) and falls back to
// Latin-1, which accepts any byte sequence.
func decodeCSVText(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		return unicode.UTF8BOM.NewDecoder().Bytes(data)
	}
	return charmap.ISO8859_1.NewDecoder().Bytes(data)
}
