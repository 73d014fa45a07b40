package service

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	xhtml "golang.org/x/net/html"

	"github.com/C0de-cloud/Notes-API/models"
)

// Export formats accepted by ExportNote and ExportCollection.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatPDF      = "pdf"
)

var markdownConverter = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// ExportNote renders a single note in the requested format. Read access is
// enough, so grantees can export notes shared with them. The markdown format
// returns the stored content unchanged, which makes export and re-import a
// byte-for-byte round trip.
func (s *Service) ExportNote(ctx context.Context, user models.User, noteId string, format string) ([]byte, string, error) {
	note, _, err := s.getNoteForAccess(ctx, user, noteId, AccessRead)
	if err != nil {
		return nil, "", err
	}

	switch format {
	case FormatMarkdown:
		return []byte(note.Content), "text/markdown; charset=utf-8", nil
	case FormatHTML:
		doc, err := markdownToHTML(noteMarkdown(note))
		if err != nil {
			return nil, "", err
		}
		return doc, "text/html; charset=utf-8", nil
	case FormatPDF:
		doc, err := markdownToHTML(noteMarkdown(note))
		if err != nil {
			return nil, "", err
		}
		pdf, err := htmlToPDF(note.Title, doc)
		if err != nil {
			return nil, "", err
		}
		return pdf, "application/pdf", nil
	default:
		return nil, "", validationError("unknown export format " + format)
	}
}

// ExportCollection renders every note in the collection as one document,
// in membership order, each note introduced by its title as a top level
// heading. Only the owner can export a collection.
func (s *Service) ExportCollection(ctx context.Context, user models.User, collectionId string, format string) ([]byte, string, error) {
	collection, err := s.getOwnedCollection(ctx, user, collectionId)
	if err != nil {
		return nil, "", err
	}
	notes, err := s.collectionNotes(ctx, collection)
	if err != nil {
		return nil, "", err
	}

	source := collectionMarkdown(notes)

	switch format {
	case FormatMarkdown:
		return []byte(source), "text/markdown; charset=utf-8", nil
	case FormatHTML:
		doc, err := markdownToHTML(source)
		if err != nil {
			return nil, "", err
		}
		return doc, "text/html; charset=utf-8", nil
	case FormatPDF:
		doc, err := markdownToHTML(source)
		if err != nil {
			return nil, "", err
		}
		pdf, err := htmlToPDF(collection.Name, doc)
		if err != nil {
			return nil, "", err
		}
		return pdf, "application/pdf", nil
	default:
		return nil, "", validationError("unknown export format " + format)
	}
}

// noteMarkdown introduces the rendered formats with the note title, so the
// HTML and PDF documents carry it in the body rather than only in metadata.
func noteMarkdown(note models.Note) string {
	return "# " + note.Title + "\n\n" + note.Content
}

func collectionMarkdown(notes []models.Note) string {
	var builder strings.Builder
	for i, note := range notes {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("# ")
		builder.WriteString(note.Title)
		builder.WriteString("\n\n")
		builder.WriteString(note.Content)
		if !strings.HasSuffix(note.Content, "\n") {
			builder.WriteString("\n")
		}
	}
	return builder.String()
}

func markdownToHTML(content string) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdownConverter.Convert([]byte(content), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const (
	pdfBodySize   = 11.0
	pdfCodeSize   = 9.5
	pdfMarginMm   = 20.0
	pdfLineFactor = 0.45
	pdfBlockGapMm = 3.0
)

var pdfHeadingSizes = map[string]float64{
	"h1": 20, "h2": 16, "h3": 14, "h4": 12.5, "h5": 11.5, "h6": 11,
}

// pdfRenderer lays out rendered note HTML onto PDF pages. It walks the
// token stream and keeps inline style as nesting counters, so tags that
// goldmark nests (strong inside em inside li) come out right without a
// full DOM pass.
type pdfRenderer struct {
	doc       *fpdf.Fpdf
	translate func(string) string

	size    float64
	bold    int
	italic  int
	mono    int
	listDep int
}

func htmlToPDF(title string, body []byte) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, true)
	doc.SetMargins(pdfMarginMm, pdfMarginMm, pdfMarginMm)
	doc.SetAutoPageBreak(true, pdfMarginMm)
	doc.AddPage()

	renderer := &pdfRenderer{
		doc:       doc,
		translate: doc.UnicodeTranslatorFromDescriptor(""),
		size:      pdfBodySize,
	}
	renderer.applyFont()
	if err := renderer.render(body); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *pdfRenderer) render(body []byte) error {
	tokens := xhtml.NewTokenizer(bytes.NewReader(body))
	for {
		switch tokens.Next() {
		case xhtml.ErrorToken:
			if err := tokens.Err(); err != io.EOF {
				return err
			}
			return nil
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			name, _ := tokens.TagName()
			r.openTag(string(name))
		case xhtml.EndTagToken:
			name, _ := tokens.TagName()
			r.closeTag(string(name))
		case xhtml.TextToken:
			r.text(string(tokens.Text()))
		}
	}
}

func (r *pdfRenderer) openTag(tag string) {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		r.blockGap()
		r.size = pdfHeadingSizes[tag]
		r.bold++
	case "p", "blockquote":
		r.blockGap()
	case "strong", "b":
		r.bold++
	case "em", "i":
		r.italic++
	case "code":
		r.mono++
		r.size = pdfCodeSize
	case "pre":
		r.blockGap()
		r.mono++
		r.size = pdfCodeSize
	case "ul", "ol":
		r.listDep++
	case "li":
		r.doc.Ln(r.lineHeight())
		indent := pdfMarginMm + float64(r.listDep-1)*6
		r.doc.SetX(indent)
		r.write("• ")
	case "br":
		r.doc.Ln(r.lineHeight())
	case "hr":
		r.blockGap()
		x, y := r.doc.GetX(), r.doc.GetY()
		pageW, _ := r.doc.GetPageSize()
		r.doc.Line(x, y, pageW-pdfMarginMm, y)
		r.doc.Ln(2)
	}
	r.applyFont()
}

func (r *pdfRenderer) closeTag(tag string) {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		r.size = pdfBodySize
		r.bold--
		r.doc.Ln(r.lineHeight())
	case "p", "blockquote", "pre":
		if tag == "pre" {
			r.mono--
			r.size = pdfBodySize
		}
		r.doc.Ln(r.lineHeight())
	case "strong", "b":
		r.bold--
	case "em", "i":
		r.italic--
	case "code":
		r.mono--
		r.size = pdfBodySize
	case "ul", "ol":
		r.listDep--
		if r.listDep == 0 {
			r.doc.Ln(r.lineHeight())
		}
	}
	r.applyFont()
}

func (r *pdfRenderer) text(text string) {
	if r.mono == 0 {
		if strings.TrimSpace(text) == "" {
			return
		}
		text = strings.ReplaceAll(text, "\n", " ")
	}
	r.write(text)
}

func (r *pdfRenderer) write(text string) {
	r.doc.Write(r.lineHeight(), r.translate(text))
}

func (r *pdfRenderer) applyFont() {
	family := "Helvetica"
	if r.mono > 0 {
		family = "Courier"
	}
	style := ""
	if r.bold > 0 {
		style += "B"
	}
	if r.italic > 0 {
		style += "I"
	}
	r.doc.SetFont(family, style, r.size)
}

func (r *pdfRenderer) lineHeight() float64 {
	return r.size * pdfLineFactor
}

func (r *pdfRenderer) blockGap() {
	if r.doc.GetY() > pdfMarginMm {
		r.doc.Ln(pdfBlockGapMm)
	}
}
