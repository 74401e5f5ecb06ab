package collect

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF assembles a minimal multi-page PDF whose page content streams show
// text via a single Tj operator per page (or "BT ET" with no Tj for a blank
// page). xref offsets are computed from the buffer as it is built rather than
// hardcoded, since a single wrong byte offset makes the whole file unreadable.
func buildPDF(t *testing.T, pageTexts []string) []byte {
	t.Helper()

	n := len(pageTexts)
	fontObj := 3 + 2*n
	total := fontObj + 1

	var buf bytes.Buffer
	offsets := make([]int, total)

	buf.WriteString("%PDF-1.4\n")

	offsets[1] = buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := make([]string, n)
	for i := range pageTexts {
		kids[i] = fmt.Sprintf("%d 0 R", 3+i)
	}

	offsets[2] = buf.Len()
	buf.WriteString(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), n))

	for i := range pageTexts {
		pageObj := 3 + i
		contentObj := 3 + n + i
		offsets[pageObj] = buf.Len()
		buf.WriteString(fmt.Sprintf(
			"%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 400 200] /Contents %d 0 R /Resources << /Font << /F1 %d 0 R >> >> >>\nendobj\n",
			pageObj, contentObj, fontObj))
	}

	for i, text := range pageTexts {
		contentObj := 3 + n + i

		body := "BT ET"
		if text != "" {
			body = fmt.Sprintf("BT /F1 24 Tf 10 100 Td (%s) Tj ET", text)
		}

		offsets[contentObj] = buf.Len()
		buf.WriteString(fmt.Sprintf("%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", contentObj, len(body), body))
	}

	offsets[fontObj] = buf.Len()
	buf.WriteString(fmt.Sprintf("%d 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n", fontObj))

	xrefStart := buf.Len()
	buf.WriteString(fmt.Sprintf("xref\n0 %d\n", total))
	buf.WriteString("0000000000 65535 f \n")

	for i := 1; i < total; i++ {
		buf.WriteString(fmt.Sprintf("%010d 00000 n \n", offsets[i]))
	}

	buf.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", total, xrefStart))

	return buf.Bytes()
}

func writePDF(t *testing.T, pageTexts []string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, buildPDF(t, pageTexts), 0o600))

	return path
}

func TestPDFCollector_Collect_ExtractsTextPerPage(t *testing.T) {
	path := writePDF(t, []string{"hello sgrep", "second page text"})

	lines, err := NewPDF().Collect(path)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "p1", lines[0].Position)
	assert.True(t, strings.Contains(lines[0].Line, "hello") && strings.Contains(lines[0].Line, "sgrep"))

	assert.Equal(t, "p2", lines[1].Position)
	assert.True(t, strings.Contains(lines[1].Line, "second"))
}

func TestPDFCollector_Collect_SkipsBlankPages(t *testing.T) {
	path := writePDF(t, []string{"front matter", "", "back matter"})

	lines, err := NewPDF().Collect(path)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "p1", lines[0].Position)
	assert.Equal(t, "p3", lines[1].Position)
}

func TestPDFCollector_Collect_StripsIdentityHArtifact(t *testing.T) {
	path := writePDF(t, []string{"prefix " + identityHArtifact + " suffix"})

	lines, err := NewPDF().Collect(path)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.False(t, strings.Contains(lines[0].Line, identityHArtifact))
	assert.True(t, strings.Contains(lines[0].Line, "prefix"))
	assert.True(t, strings.Contains(lines[0].Line, "suffix"))
}

func TestPDFCollector_Name(t *testing.T) {
	assert.Equal(t, "pdf", NewPDF().Name())
}

func TestPDFCollector_ShouldCollect(t *testing.T) {
	c := NewPDF()

	ok, err := c.ShouldCollect("report.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.ShouldCollect("report.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}
