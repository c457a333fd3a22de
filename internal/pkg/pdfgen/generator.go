// Package pdfgen renders certificates and letters to PDF with gofpdf.
// Output is re-derived from the stored record on every request.
package pdfgen

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/tarcin/docissuer/internal/pkg/logger"
)

// Background images looked up in Options.AssetsDir
const (
	OfferBackground       = "IOL-1.png"
	CompletionBackground  = "ICL-1.png"
	CertificateBackground = "BGF.png"
)

// Options configures a Generator
type Options struct {
	AssetsDir    string
	TemplatesDir string
	// Organization is written into the document metadata
	Organization string
	// VerifyBaseURL is encoded in the certificate QR code; empty disables the code
	VerifyBaseURL string
}

// Generator renders documents. It is safe for concurrent use: every call
// builds its own gofpdf document.
type Generator struct {
	opts      Options
	templates Templates
}

// NewGenerator loads the letter templates and returns a ready Generator
func NewGenerator(opts Options) (*Generator, error) {
	templates, err := LoadTemplates(opts.TemplatesDir)
	if err != nil {
		return nil, err
	}
	return &Generator{opts: opts, templates: templates}, nil
}

// drawBackground stretches an asset over the whole page. A missing or
// unreadable image is logged and the page is rendered without it.
func (g *Generator) drawBackground(pdf *gofpdf.Fpdf, name string) {
	path := filepath.Join(g.opts.AssetsDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Background image unavailable, rendering without it")
		return
	}

	imageType := strings.ToUpper(strings.TrimPrefix(filepath.Ext(name), "."))
	opts := gofpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if pdf.Err() {
		logger.Warn().Err(pdf.Error()).Str("path", path).Msg("Background image could not be decoded, rendering without it")
		pdf.ClearError()
		return
	}

	w, h := pdf.GetPageSize()
	pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")
}

func (g *Generator) newDocument(orientation, unit, title string) *gofpdf.Fpdf {
	pdf := gofpdf.New(orientation, unit, "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(title, true)
	if g.opts.Organization != "" {
		pdf.SetAuthor(g.opts.Organization, true)
		pdf.SetCreator(g.opts.Organization, true)
	}
	pdf.AddPage()
	return pdf
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	if buf.Len() == 0 {
		return nil, errors.New("render pdf: empty output")
	}
	return buf.Bytes(), nil
}

// centerText draws txt horizontally centred on cx with the current font
func centerText(pdf *gofpdf.Fpdf, tr func(string) string, cx, y float64, txt string) {
	s := tr(txt)
	pdf.Text(cx-pdf.GetStringWidth(s)/2, y, s)
}
