package source

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	data := []byte("Nome,CPF,Turma\n" +
		"João da Silva,111.444.777-35,Turma A\n" +
		"Maria Souza,,\n")

	sheet, err := ParseCSV(data)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}

	want := []string{"Nome", "CPF", "Turma"}
	if len(sheet.Headers) != len(want) {
		t.Fatalf("headers = %v, want %v", sheet.Headers, want)
	}
	for i, h := range want {
		if sheet.Headers[i] != h {
			t.Errorf("header[%d] = %q, want %q", i, sheet.Headers[i], h)
		}
	}

	if len(sheet.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(sheet.Rows))
	}
	if sheet.Rows[0][0] != "João da Silva" {
		t.Errorf("row value = %q", sheet.Rows[0][0])
	}
}

func TestParseCSV_DropsEmptyRows(t *testing.T) {
	data := []byte("Nome,CPF\n" +
		"João da Silva,111.444.777-35\n" +
		",\n" +
		"   ,  \n" +
		"Maria Souza,529.982.247-25\n")

	sheet, err := ParseCSV(data)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(sheet.Rows) != 2 {
		t.Errorf("rows = %d, want 2 after dropping blanks", len(sheet.Rows))
	}
}

func TestParseCSV_RaggedRows(t *testing.T) {
	// Operator sheets routinely have short trailing rows.
	data := []byte("Nome,CPF,Turma\nMaria Souza\n")

	sheet, err := ParseCSV(data)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(sheet.Rows) != 1 || len(sheet.Rows[0]) != 1 {
		t.Errorf("rows = %v, want the short row kept as-is", sheet.Rows)
	}
}

func TestParseCSV_TrimsHeaderWhitespace(t *testing.T) {
	data := []byte(" Nome , CPF \nMaria Souza,529.982.247-25\n")

	sheet, err := ParseCSV(data)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if sheet.Headers[0] != "Nome" || sheet.Headers[1] != "CPF" {
		t.Errorf("headers = %v, want trimmed", sheet.Headers)
	}
}

func TestParseCSV_InvalidUTF8Replaced(t *testing.T) {
	// "José" in Latin-1: the é is the single byte 0xE9.
	data := []byte("Nome\nJos\xe9 Pereira\n")

	sheet, err := ParseCSV(data)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if !strings.Contains(sheet.Rows[0][0], "�") {
		t.Errorf("row = %q, want invalid byte replaced", sheet.Rows[0][0])
	}
}

func TestParseCSV_EmptyFile(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("\n\n"), []byte("  ,  \n")} {
		if _, err := ParseCSV(data); err == nil {
			t.Errorf("ParseCSV(%q) accepted an empty file", data)
		}
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	cells := [][]string{
		{"Nome", "CPF", "Turma"},
		{"João da Silva", "111.444.777-35", "Turma A"},
		{"Maria Souza", "529.982.247-25", ""},
	}
	for i, row := range cells {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				t.Fatal(err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	sheet, err := ParseXLSX(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseXLSX() error = %v", err)
	}

	if len(sheet.Headers) != 3 || sheet.Headers[0] != "Nome" {
		t.Errorf("headers = %v", sheet.Headers)
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(sheet.Rows))
	}
	if sheet.Rows[0][1] != "111.444.777-35" {
		t.Errorf("cell = %q", sheet.Rows[0][1])
	}
}

func TestParseXLSX_Garbage(t *testing.T) {
	if _, err := ParseXLSX([]byte("not a workbook")); err == nil {
		t.Error("ParseXLSX() accepted garbage bytes")
	}
}

func TestParse_Dispatch(t *testing.T) {
	csvData := []byte("Nome\nMaria Souza\n")

	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"alunos.csv", false},
		{"alunos.CSV", false},
		{"alunos.txt", false}, // unknown extensions fall back to CSV
		{"alunos.xlsx", true}, // CSV bytes are not a workbook
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			_, err := Parse(tt.filename, csvData)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%s) error = %v, wantErr %v", tt.filename, err, tt.wantErr)
			}
		})
	}
}

func TestParse_RejectsLegacyXLS(t *testing.T) {
	_, err := Parse("alunos.xls", []byte("Nome\nMaria Souza\n"))
	if err == nil {
		t.Fatal("Parse() accepted a legacy .xls file")
	}
	if !strings.Contains(err.Error(), "not supported") {
		t.Errorf("error = %q, want an explicit unsupported-format message", err)
	}
}
