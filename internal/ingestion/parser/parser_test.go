package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseCSVDropsBlankRows(t *testing.T) {
	t.Parallel()

	data := []byte("Roll No,Name,Arrears\nA1,Ann,4\n , ,\nA2,Bob,0\n\nA3,Cid\n")
	res, err := NewRegistry(nil).Parse(FormatCSV, data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(res.Records))
	}
	if v, _ := res.Records[0].Get("Roll No"); v != "A1" {
		t.Fatalf("header not preserved: %+v", res.Records[0])
	}
	if v, ok := res.Records[2].Get("Arrears"); !ok || v != "" {
		t.Fatalf("short row should pad with empty string, got %q ok=%v", v, ok)
	}
}

func TestParseCSVEncodings(t *testing.T) {
	t.Parallel()

	bom := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name,arrears\nAnn,2\n")...)
	res, err := NewRegistry(nil).Parse(FormatCSV, bom)
	if err != nil {
		t.Fatalf("Parse bom: %v", err)
	}
	if v, ok := res.Records[0].Get("name"); !ok || v != "Ann" {
		t.Fatalf("bom not stripped: %+v", res.Records[0])
	}

	latin1 := []byte("name,arrears\nJos\xe9,1\n")
	res, err = NewRegistry(nil).Parse(FormatCSV, latin1)
	if err != nil {
		t.Fatalf("Parse latin1: %v", err)
	}
	if v, _ := res.Records[0].Get("name"); v != "José" {
		t.Fatalf("latin1 decode: got %q", v)
	}
}

func TestParseXLSX(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	rows := [][]any{
		{"Roll No", "Name", "", "Arrears"},
		{"X1", "Ann", "CSE", 5},
		{},
		{"X2", "Bob", "ECE", 1},
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	res, err := NewRegistry(nil).Parse(FormatXLSX, buf.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(res.Records))
	}
	if v, _ := res.Records[0].Get("column_3"); v != "CSE" {
		t.Fatalf("blank header should be column_3: %+v", res.Records[0])
	}
	if v, _ := res.Records[0].Get("Arrears"); v != "5" {
		t.Fatalf("numeric cell: got %q", v)
	}
}

func TestParseTXTReplacesInvalidBytes(t *testing.T) {
	t.Parallel()

	res, err := NewRegistry(nil).Parse(FormatTXT, []byte("ok\xffdone"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Text != "ok�done" {
		t.Fatalf("got %q", res.Text)
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	reg := NewRegistry([]string{"csv", "txt", "bogus"})

	if _, err := reg.Check("report.docx", []byte("x")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("docx: expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := reg.Check("report.docx", nil); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("extension must be checked before emptiness, got %v", err)
	}
	if _, err := reg.Check("Report.CSV", nil); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("empty: expected ErrEmptyFile, got %v", err)
	}

	_, err := reg.Check("sheet.xlsx", []byte("x"))
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) || unavailable.Error() != "XLSX support unavailable" {
		t.Fatalf("xlsx disabled: got %v", err)
	}

	f, err := reg.Check("Report.CSV", []byte("a"))
	if err != nil || f != FormatCSV {
		t.Fatalf("csv: got %q %v", f, err)
	}

	if got := reg.EnabledFormats(); len(got) != 2 || got[0] != FormatCSV || got[1] != FormatTXT {
		t.Fatalf("EnabledFormats: %v", got)
	}
}

func TestRecordMarshalKeepsHeaderOrder(t *testing.T) {
	t.Parallel()

	rec := NewRecord([]string{"z", "a", "z"}, []string{"1", "2", "3"})
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `{"z":"3","a":"2"}` {
		t.Fatalf("got %s", b)
	}
}

// brokenCatalogPDF has a well-formed xref whose root object cannot be parsed.
func brokenCatalogPDF() []byte {
	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	obj := b.Len()
	b.WriteString("1 0 obj\n<< /Pages >> >> ]\nendobj\n")
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 2\n0000000000 65535 f \n%010d 00000 n \n", obj)
	fmt.Fprintf(&b, "trailer\n<< /Size 2 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return b.Bytes()
}

func TestParsePDFMalformedReturnsError(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	for name, data := range map[string][]byte{
		"broken catalog": brokenCatalogPDF(),
		"truncated":      []byte("%PDF-1.4\n1 0 obj\n(hello"),
	} {
		res, err := reg.Parse(FormatPDF, data)
		if err == nil {
			t.Fatalf("%s: expected an error", name)
		}
		if res.Text != "" || len(res.Records) != 0 {
			t.Fatalf("%s: unexpected result %+v", name, res)
		}
	}
}
