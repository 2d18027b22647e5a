package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func buildZip(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range parts {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func wordDocument(body string) string {
	return `<w:document ` + wordNS + `><w:body>` + body + `</w:body></w:document>`
}

func TestExtractBytes_Plain(t *testing.T) {
	e := NewExtractor()
	tests := []struct {
		name    string
		content []byte
		ext     string
		want    string
	}{
		{"text", []byte("Hello world\nLine 2\n"), ".txt", "Hello world\nLine 2"},
		{"markdown utf8", []byte("caf\xc3\xa9"), ".md", "café"},
		{"invalid utf8 repaired", []byte("hello\x80world"), ".rst", "hello�world"},
		{"bom stripped", []byte("\xef\xbb\xbfBOM text"), ".txt", "BOM text"},
		{"unknown extension", []byte("key = value"), ".ini", "key = value"},
		{"no extension", []byte("README"), "", "README"},
		{"extension without dot", []byte("dotless"), "TXT", "dotless"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ExtractBytes(tt.content, tt.ext)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractBytes_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Title"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Value 1"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "Value 2"))
	_, err := f.NewSheet("Totals")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Totals", "A1", "Sum"))
	var buf bytes.Buffer
	_, err = f.WriteTo(&buf)
	require.NoError(t, err)

	got, err := NewExtractor().ExtractBytes(buf.Bytes(), ".xlsx")
	require.NoError(t, err)
	assert.Equal(t, "Title\nValue 1\tValue 2\n\nTotals\nSum", got)
}

func TestExtractBytes_DOCX(t *testing.T) {
	e := NewExtractor()

	t.Run("default part", func(t *testing.T) {
		content := buildZip(t, map[string]string{
			"word/document.xml": wordDocument(`<w:p w:rsidR="00AB"><w:r><w:t>Searchable </w:t></w:r><w:r><w:t xml:space="preserve">docx content</w:t></w:r></w:p>`),
		})
		got, err := e.ExtractBytes(content, ".docx")
		require.NoError(t, err)
		assert.Equal(t, "Searchable docx content", got)
	})

	t.Run("paragraphs become lines", func(t *testing.T) {
		content := buildZip(t, map[string]string{
			"word/document.xml": wordDocument(`<w:p><w:r><w:t>First.</w:t></w:r></w:p><w:p></w:p><w:p><w:r><w:t>Second.</w:t></w:r></w:p>`),
		})
		got, err := e.ExtractBytes(content, ".docx")
		require.NoError(t, err)
		assert.Equal(t, "First.\nSecond.", got)
	})

	t.Run("main part from content types", func(t *testing.T) {
		content := buildZip(t, map[string]string{
			"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Override ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml" PartName="/word/document2.xml"/>
</Types>`,
			"word/document2.xml": wordDocument(`<w:p><w:r><w:t>Content from document2</w:t></w:r></w:p>`),
		})
		got, err := e.ExtractBytes(content, ".docx")
		require.NoError(t, err)
		assert.Equal(t, "Content from document2", got)
	})

	t.Run("not a zip", func(t *testing.T) {
		_, err := e.ExtractBytes([]byte("plain bytes"), ".docx")
		assert.Error(t, err)
	})

	t.Run("missing document part", func(t *testing.T) {
		content := buildZip(t, map[string]string{"other.xml": "<x/>"})
		_, err := e.ExtractBytes(content, ".docx")
		assert.ErrorContains(t, err, "word/document.xml")
	})
}

func TestExtractBytes_PDFInvalid(t *testing.T) {
	_, err := NewExtractor().ExtractBytes([]byte("not a pdf"), ".pdf")
	assert.Error(t, err)
}

func TestExtract_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("  File content  "), 0o600))

	got, err := NewExtractor().Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "File content", got)

	_, err = NewExtractor().Extract(filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSupportsAndFormats(t *testing.T) {
	e := NewExtractor()
	assert.True(t, e.Supports(".PDF"))
	assert.True(t, e.Supports("docx"))
	assert.False(t, e.Supports(".pptx"))
	assert.Equal(t, []string{".docx", ".md", ".pdf", ".rst", ".txt", ".xlsx"}, e.Formats())
}
