package document

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// buildPDF writes a minimal uncompressed PDF with one text line per page and
// a correct xref table.
func buildPDF(pages ...string) []byte {
	var objects []string
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)
	for i, text := range pages {
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

const wordDoc = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Photosynthesis makes food.</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Plants need </w:t></w:r><w:r><w:t>light.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestExtractPlainText(t *testing.T) {
	t.Parallel()

	text, err := Extract("Notes.TXT", []byte("hello\xffworld"))
	require.NoError(t, err)
	assert.Equal(t, "helloworld", text)

	text, err = Extract("readme.md", []byte("# Cells\nThey divide."))
	require.NoError(t, err)
	assert.Equal(t, "# Cells\nThey divide.", text)
}

func TestExtractDOCX(t *testing.T) {
	t.Parallel()

	text, err := Extract("lesson.docx", buildDOCX(t, wordDoc))
	require.NoError(t, err)
	assert.Equal(t, "Photosynthesis makes food.\nPlants need light.", text)
}

func TestExtractDOCXWithoutBody(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Extract("empty.docx", buf.Bytes())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "word/document.xml")
}

func TestExtractPDFJoinsPages(t *testing.T) {
	t.Parallel()

	text, err := Extract("Lesson.PDF", buildPDF("Cells divide.", "Mitosis makes two cells."))
	require.NoError(t, err)
	assert.Equal(t, "Cells divide.\nMitosis makes two cells.", text)
}

func TestExtractPDFMalformedReturnsError(t *testing.T) {
	t.Parallel()

	valid := buildPDF("Cells divide.")

	broken := bytes.Replace(valid, []byte("1 0 obj"), []byte("1#0 obj"), 1)
	require.NotEqual(t, valid, broken)
	assert.NotPanics(t, func() {
		_, err := Extract("broken.pdf", broken)
		assert.Error(t, err)
	})

	// Damage one byte at a time; every variant must come back as text or an
	// error, never a panic.
	for i := range valid {
		corrupt := bytes.Clone(valid)
		corrupt[i] = '#'
		assert.NotPanics(t, func() {
			_, _ = Extract("corrupt.pdf", corrupt)
		}, "byte %d", i)
	}
}

func TestExtractCorruptFiles(t *testing.T) {
	t.Parallel()

	_, err := Extract("broken.docx", []byte("not a zip"))
	assert.Error(t, err)

	_, err = Extract("broken.pdf", []byte("not a pdf"))
	assert.Error(t, err)
}

func TestExtractUnsupported(t *testing.T) {
	t.Parallel()

	_, err := Extract("slides.pptx", []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Extract("noext", []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestCombine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pasted\n\nfile", Combine("  pasted ", "file\n"))
	assert.Equal(t, "file", Combine("   ", "file"))
	assert.Equal(t, "pasted", Combine("pasted", ""))
	assert.Equal(t, "", Combine("", " "))
}
