package collect

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph</w:t></w:r></w:p>
    <w:p><w:r><w:t></w:t></w:r></w:p>
  </w:body>
</w:document>`

// writeDocx assembles a minimal .docx: a zip archive containing only
// word/document.xml, which is the one member nguyenthenguyen/docx requires to
// open a document.
func writeDocx(t *testing.T, documentXML string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "doc.docx")

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)

	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)

	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)

	require.NoError(t, zw.Close())

	return path
}

func TestDocxCollector_Collect_OneLinePerParagraph(t *testing.T) {
	path := writeDocx(t, testDocumentXML)

	lines, err := NewDocx().Collect(path)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, "p0", lines[0].Position)
	assert.Equal(t, "First paragraph\n", lines[0].Line)

	assert.Equal(t, "p1", lines[1].Position)
	assert.Equal(t, "Second paragraph\n", lines[1].Line)

	assert.Equal(t, "p2", lines[2].Position)
	assert.Equal(t, "\n", lines[2].Line)
}

func TestDocxCollector_Name(t *testing.T) {
	assert.Equal(t, "docx", NewDocx().Name())
}

func TestDocxCollector_ShouldCollect(t *testing.T) {
	c := NewDocx()

	for _, ext := range []string{"doc.docx", "doc.doc"} {
		ok, err := c.ShouldCollect(ext)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := c.ShouldCollect("doc.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSplitParagraphs_ConcatenatesRunsWithinParagraph(t *testing.T) {
	paragraphs, err := splitParagraphs(testDocumentXML)
	require.NoError(t, err)
	require.Equal(t, []string{"First paragraph", "Second paragraph", ""}, paragraphs)
}

func TestSplitParagraphs_IgnoresTextOutsideParagraphs(t *testing.T) {
	body := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:sectPr><w:t>not a paragraph</w:t></w:sectPr>
    <w:p><w:r><w:t>only this</w:t></w:r></w:p>
  </w:body>
</w:document>`

	paragraphs, err := splitParagraphs(body)
	require.NoError(t, err)
	assert.Equal(t, []string{"only this"}, paragraphs)
}

func TestSplitParagraphs_NoParagraphsReturnsEmpty(t *testing.T) {
	paragraphs, err := splitParagraphs(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body></w:body></w:document>`)
	require.NoError(t, err)
	assert.Empty(t, paragraphs)
}
