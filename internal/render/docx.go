package render

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"voicedoc/internal/storage"
)

// docxRenderer produces a WordprocessingML (.docx) document: a minimal OOXML
// package with a centered title, a right-aligned generation date, and
// justified body paragraphs with a first-line indent. The document is
// rendered into memory and handed to the storage adapter, so it lands in
// the documents/ subtree of whichever backend is configured.
type docxRenderer struct {
	store storage.Storage
	now   func() time.Time
}

// NewDocx creates the .docx Renderer.
func NewDocx(store storage.Storage) Renderer {
	return &docxRenderer{store: store, now: time.Now}
}

var _ Renderer = (*docxRenderer)(nil)

func (d *docxRenderer) Render(ctx context.Context, title, text string) (string, error) {
	now := d.now()

	var buf bytes.Buffer
	if err := writePackage(&buf, title, text, now); err != nil {
		return "", fmt.Errorf("render docx: %w", err)
	}

	// Timestamped filename: regenerating never overwrites an earlier document.
	filename := fmt.Sprintf("%s_%s.docx", sanitizeTitle(title), now.Format("20060102_150405"))
	path, err := d.store.SaveDocument(ctx, &buf, filename)
	if err != nil {
		return "", fmt.Errorf("store document: %w", err)
	}
	return path, nil
}

// sanitizeTitle keeps letters, digits, spaces, dashes and underscores so the
// title can participate in a filename.
func sanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	s := strings.TrimSpace(b.String())
	if s == "" {
		s = "document"
	}
	return strings.ReplaceAll(s, " ", "_")
}

func writePackage(buf *bytes.Buffer, title, text string, now time.Time) error {
	zw := zip.NewWriter(buf)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/document.xml", documentXML(title, text, now)},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("create part %s: %w", p.name, err)
		}
		if _, err := w.Write([]byte(p.content)); err != nil {
			return fmt.Errorf("write part %s: %w", p.name, err)
		}
	}
	return zw.Close()
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"/>`

// Layout constants, in OOXML units: font sizes are half-points, indents are
// twips (1/20 pt, 720 = half an inch), spacing is twips.
const (
	titleSize       = "36"
	dateSize        = "20"
	bodySize        = "28"
	firstLineIndent = "720"
	spaceAfterPara  = "240"
	bodyFont        = "Times New Roman"
)

func documentXML(title, text string, now time.Time) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>`)

	// Centered bold title.
	b.WriteString(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>`)
	b.WriteString(`<w:r><w:rPr><w:rFonts w:ascii="` + bodyFont + `" w:hAnsi="` + bodyFont + `"/><w:b/><w:sz w:val="` + titleSize + `"/></w:rPr>`)
	b.WriteString(`<w:t xml:space="preserve">` + escapeXML(title) + `</w:t></w:r></w:p>`)

	// Right-aligned italic generation date.
	b.WriteString(`<w:p><w:pPr><w:jc w:val="right"/></w:pPr>`)
	b.WriteString(`<w:r><w:rPr><w:i/><w:sz w:val="` + dateSize + `"/></w:rPr>`)
	b.WriteString(`<w:t xml:space="preserve">` + escapeXML(now.Format("02.01.2006")) + `</w:t></w:r></w:p>`)

	// Spacer before the body.
	b.WriteString(`<w:p/>`)

	// Justified body paragraphs with a first-line indent.
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString(`<w:p><w:pPr><w:spacing w:after="` + spaceAfterPara + `"/>`)
		b.WriteString(`<w:ind w:firstLine="` + firstLineIndent + `"/>`)
		b.WriteString(`<w:jc w:val="both"/></w:pPr>`)
		b.WriteString(`<w:r><w:rPr><w:rFonts w:ascii="` + bodyFont + `" w:hAnsi="` + bodyFont + `"/><w:sz w:val="` + bodySize + `"/></w:rPr>`)
		b.WriteString(`<w:t xml:space="preserve">` + escapeXML(para) + `</w:t></w:r></w:p>`)
	}

	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
