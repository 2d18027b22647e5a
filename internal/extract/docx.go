package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	docxDefaultPart  = "word/document.xml"
	docxContentTypes = "[Content_Types].xml"
	docxMainType     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	wordprocessingNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

type contentTypes struct {
	Overrides []struct {
		PartName    string `xml:"PartName,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Override"`
}

// decodeDOCX collects the text runs of the main document part, one line per
// paragraph.
func decodeDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	part := docxDefaultPart
	if f, ok := files[docxContentTypes]; ok {
		if p := mainDocumentPart(f); p != "" {
			part = p
		}
	}
	f, ok := files[part]
	if !ok {
		return "", fmt.Errorf("open docx: %s not found", part)
	}
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open docx part %s: %w", part, err)
	}
	defer rc.Close()
	return paragraphText(rc)
}

func mainDocumentPart(f *zip.File) string {
	rc, err := f.Open()
	if err != nil {
		return ""
	}
	defer rc.Close()
	var ct contentTypes
	if err := xml.NewDecoder(rc).Decode(&ct); err != nil {
		return ""
	}
	for _, o := range ct.Overrides {
		if o.ContentType == docxMainType {
			return strings.TrimPrefix(o.PartName, "/")
		}
	}
	return ""
}

func paragraphText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		doc    strings.Builder
		para   strings.Builder
		inText bool
	)
	flush := func() {
		if line := strings.TrimSpace(para.String()); line != "" {
			doc.WriteString(line)
			doc.WriteByte('\n')
		}
		para.Reset()
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse docx: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordprocessingNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br":
				para.WriteByte(' ')
			}
		case xml.EndElement:
			if t.Name.Space != wordprocessingNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				flush()
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	flush()
	return doc.String(), nil
}
