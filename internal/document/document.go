// Package document extracts plain text from uploaded study material.
package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedFormat is returned for extensions other than
// .txt, .md, .pdf and .docx.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Accepted lists the upload extensions Extract understands.
var Accepted = []string{".txt", ".md", ".pdf", ".docx"}

const docxBody = "word/document.xml"

// Extract returns the text of an uploaded file, picked by its lowercased
// extension.
func Extract(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md":
		return strings.ToValidUTF8(string(data), ""), nil
	case ".pdf":
		text, err := extractPDF(data)
		if err != nil {
			return "", fmt.Errorf("read pdf %q: %w", filename, err)
		}
		return text, nil
	case ".docx":
		text, err := extractDOCX(data)
		if err != nil {
			return "", fmt.Errorf("read docx %q: %w", filename, err)
		}
		return text, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// extractPDF returns the plain text of each page, one page per line. The pdf
// package panics on many malformed inputs, so those become errors here.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			parts = append(parts, "")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		parts = append(parts, pageText)
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return paragraphs(rc)
	}
	return "", fmt.Errorf("missing %s", docxBody)
}

// paragraphs walks WordprocessingML, keeping run text and turning paragraph
// ends, breaks and tabs into whitespace.
func paragraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// Combine joins pasted text and extracted text with a blank line, skipping
// whichever is empty.
func Combine(pasted, extracted string) string {
	var parts []string
	for _, p := range []string{pasted, extracted} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}
