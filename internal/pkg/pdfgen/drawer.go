package pdfgen

import (
	"github.com/jung-kurt/gofpdf"
	"github.com/tarcin/docissuer/internal/pkg/textlayout"
)

// fpdfDrawer adapts a gofpdf document to textlayout.Drawer using one font
// family at a fixed size. Bold runs switch the face, not the family.
type fpdfDrawer struct {
	pdf    *gofpdf.Fpdf
	family string
	size   float64
	tr     func(string) string
}

func newDrawer(pdf *gofpdf.Fpdf, family string, size float64) *fpdfDrawer {
	return &fpdfDrawer{
		pdf:    pdf,
		family: family,
		size:   size,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (d *fpdfDrawer) setStyle(style textlayout.Style) {
	face := ""
	if style == textlayout.Bold {
		face = "B"
	}
	d.pdf.SetFont(d.family, face, d.size)
}

func (d *fpdfDrawer) TextWidth(text string, style textlayout.Style) float64 {
	d.setStyle(style)
	return d.pdf.GetStringWidth(d.tr(text))
}

func (d *fpdfDrawer) DrawText(x, y float64, text string, style textlayout.Style) {
	d.setStyle(style)
	d.pdf.Text(x, y, d.tr(text))
}
