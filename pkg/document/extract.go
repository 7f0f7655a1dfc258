package document

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	pdf "github.com/ledongthuc/pdf"
	"github.com/shopspring/decimal"
)

var supportedExt = map[string]struct{}{
	".pdf": {}, ".docx": {}, ".txt": {}, ".csv": {}, ".md": {},
}

// Supported reports whether text can be extracted from a file with this name.
func Supported(filename string) bool {
	_, ok := supportedExt[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// ExtractText returns the plain text of a PDF, DOCX or plain-text file.
func ExtractText(filename string, data []byte) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".pdf":
		return extractTextFromPDF(data)
	case ".docx":
		return extractTextFromDocx(data)
	case ".txt", ".csv", ".md":
		if !utf8.Valid(data) {
			return "", errors.New("text file is not valid UTF-8")
		}
		return normalizeWhitespace(string(data)), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}

func extractTextFromPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	rs, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err = io.Copy(&buf, rs); err != nil {
		return "", err
	}
	return normalizeWhitespace(buf.String()), nil
}

var (
	reTags     = regexp.MustCompile(`<[^>]+>`)
	reSpaces   = regexp.MustCompile(`[ \t\r\f\v]+`)
	reNewlines = regexp.MustCompile(`\n+`)
	reAmount   = regexp.MustCompile(`(-)?\$\s?(\d{1,3}(?:,\d{3})+|\d+)(\.\d{1,2})?|(-)?\b(\d{1,3}(?:,\d{3})+|\d+)\.(\d{2})\b`)
)

const previewLength = 1000

func extractTextFromDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var docXML []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		docXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}
		break
	}
	if len(docXML) == 0 {
		return "", errors.New("no document.xml found in docx")
	}
	xml := string(docXML)
	xml = strings.ReplaceAll(xml, "</w:p>", "\n")
	xml = strings.ReplaceAll(xml, "<w:tab/>", "\t")
	return normalizeWhitespace(reTags.ReplaceAllString(xml, " ")), nil
}

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00A0", " ")
	s = reSpaces.ReplaceAllString(s, " ")
	s = reNewlines.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// Extracted is the summary stored in a document's extracted_data.
type Extracted struct {
	Text        string    `json:"extracted_text"`
	Characters  int       `json:"characters"`
	Lines       int       `json:"lines"`
	Amounts     []float64 `json:"amounts"`
	Total       float64   `json:"total"`
	KeyFindings []string  `json:"key_findings"`
}

// Analyze counts the text and picks out currency amounts: anything with a
// dollar sign, or a number with exactly two decimals.
func Analyze(text string) Extracted {
	out := Extracted{
		Characters: utf8.RuneCountInString(text),
		Amounts:    []float64{},
	}
	if text != "" {
		out.Lines = strings.Count(text, "\n") + 1
	}
	total := decimal.Zero
	for _, m := range reAmount.FindAllStringSubmatch(text, -1) {
		var raw string
		negative := false
		if m[2] != "" {
			raw, negative = m[2]+m[3], m[1] != ""
		} else {
			raw, negative = m[5]+"."+m[6], m[4] != ""
		}
		d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
		if err != nil {
			continue
		}
		if negative {
			d = d.Neg()
		}
		total = total.Add(d)
		f, _ := d.Float64()
		out.Amounts = append(out.Amounts, f)
	}
	out.Total, _ = total.Round(2).Float64()

	preview := []rune(text)
	if len(preview) > previewLength {
		preview = preview[:previewLength]
	}
	out.Text = string(preview)

	out.KeyFindings = []string{fmt.Sprintf("%d characters across %d lines", out.Characters, out.Lines)}
	if n := len(out.Amounts); n > 0 {
		out.KeyFindings = append(out.KeyFindings,
			fmt.Sprintf("%d amounts detected", n),
			fmt.Sprintf("Total amount: $%s", total.StringFixed(2)))
	} else {
		out.KeyFindings = append(out.KeyFindings, "No currency amounts detected")
	}
	return out
}

// Map converts the summary into the JSON object stored on the document.
func (e Extracted) Map() map[string]any {
	return map[string]any{
		"extracted_text": e.Text,
		"characters":     e.Characters,
		"lines":          e.Lines,
		"amounts":        e.Amounts,
		"total":          e.Total,
		"key_findings":   e.KeyFindings,
	}
}
