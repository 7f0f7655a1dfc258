package document

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docxWith(t *testing.T, body string) []byte {
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

func TestExtractTextDocx(t *testing.T) {
	data := docxWith(t, `<w:document><w:body><w:p><w:r><w:t>Statement</w:t></w:r></w:p><w:p><w:r><w:t>Balance</w:t><w:tab/><w:t>$1,250.00</w:t></w:r></w:p></w:body></w:document>`)
	text, err := ExtractText("statement.DOCX", data)
	require.NoError(t, err)
	assert.Contains(t, text, "Statement")
	assert.Contains(t, text, "Balance")
	assert.Contains(t, text, "$1,250.00")
}

func TestExtractTextPlain(t *testing.T) {
	text, err := ExtractText("notes.txt", []byte("  line one  \n\n\nline\ttwo "))
	require.NoError(t, err)
	assert.Equal(t, "line one \nline two", text)
}

func TestExtractTextRejects(t *testing.T) {
	_, err := ExtractText("photo.png", []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = ExtractText("broken.pdf", []byte("not a pdf"))
	assert.Error(t, err)

	_, err = ExtractText("bad.txt", []byte{0xff, 0xfe, 0xfd})
	assert.Error(t, err)
}

func TestAnalyzeFindsAmounts(t *testing.T) {
	got := Analyze("Deposit $1,200.50\nCoffee -4.75\nRent $800\nInvoice 2024 ref 17")
	assert.Equal(t, 4, got.Lines)
	assert.Equal(t, []float64{1200.50, -4.75, 800}, got.Amounts)
	assert.InDelta(t, 1995.75, got.Total, 1e-9)
	assert.Contains(t, got.KeyFindings, "Total amount: $1995.75")
}

func TestAnalyzeEmpty(t *testing.T) {
	got := Analyze("")
	assert.Zero(t, got.Lines)
	assert.Empty(t, got.Amounts)
	assert.Contains(t, got.KeyFindings, "No currency amounts detected")
}

func TestParseType(t *testing.T) {
	assert.Equal(t, TypeBankStatement, ParseType(" Bank_Statement "))
	assert.Equal(t, TypeOther, ParseType("selfie"))
}
