package e2e

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// FileExtensions are the types the corpus is written as. PDF is left out: there is no
// small way to produce a PDF with extractable text.
var FileExtensions = []string{".txt", ".md", ".rst", ".docx", ".xlsx"}

// WriteFact writes f into dir as its file type and returns the path.
func WriteFact(dir string, f Fact) (string, error) {
	var (
		data []byte
		err  error
	)
	switch f.Ext {
	case ".docx":
		data, err = minimalDocx(f.Sentences())
	case ".xlsx":
		data, err = minimalXlsx(f.Sentences())
	default:
		data = []byte(f.Text() + "\n")
	}
	if err != nil {
		return "", fmt.Errorf("build %s: %w", f.FileName(), err)
	}
	path := filepath.Join(dir, f.FileName())
	return path, os.WriteFile(path, data, 0644)
}

// minimalDocx writes one paragraph per line.
func minimalDocx(lines []string) ([]byte, error) {
	var body strings.Builder
	for _, line := range lines {
		body.WriteString(`<w:p><w:r><w:t>`)
		if err := xml.EscapeText(&body, []byte(line)); err != nil {
			return nil, err
		}
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create("word/document.xml")
	if err != nil {
		return nil, err
	}
	doc := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`
	if _, err := fw.Write([]byte(doc)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// minimalXlsx writes one row per line into the first sheet.
func minimalXlsx(lines []string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, line := range lines {
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", i+1), line); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
