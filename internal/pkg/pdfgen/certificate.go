package pdfgen

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
	"github.com/tarcin/docissuer/internal/app/models"
	"github.com/tarcin/docissuer/internal/pkg/helpers"
)

const (
	certOuterMargin = 11.0
	certInnerMargin = 27.0
	certQRSize      = 80.0
)

// CertificateText is the body line under the recipient name
func CertificateText(c *models.Certificate) string {
	if content := strings.TrimSpace(helpers.StringValue(c.Content)); content != "" {
		return content
	}
	return "Successfully completed internship on " + c.Course
}

// VerifyURL is the public lookup address encoded in the QR code
func (g *Generator) VerifyURL(certificateID string) string {
	if g.opts.VerifyBaseURL == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(g.opts.VerifyBaseURL, "?") {
		sep = "&"
	}
	return g.opts.VerifyBaseURL + sep + "id=" + url.QueryEscape(certificateID)
}

// Certificate renders a completion certificate on an A4 landscape page in pt
func (g *Generator) Certificate(c *models.Certificate) ([]byte, error) {
	pdf := g.newDocument("L", "pt", "Certificate "+c.CertificateID)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageWidth, pageHeight := pdf.GetPageSize()
	cx := pageWidth / 2

	g.drawBackground(pdf, CertificateBackground)

	pdf.SetDrawColor(18, 24, 66)
	pdf.SetLineWidth(10)
	pdf.Rect(certOuterMargin, certOuterMargin, pageWidth-2*certOuterMargin, pageHeight-2*certOuterMargin, "D")

	pdf.SetDrawColor(2, 132, 199)
	pdf.SetLineWidth(1.5)
	pdf.Rect(certInnerMargin, certInnerMargin, pageWidth-2*certInnerMargin, pageHeight-2*certInnerMargin, "D")

	pdf.SetFont("Helvetica", "B", 28)
	pdf.SetTextColor(18, 24, 66)
	centerText(pdf, tr, cx, 180, "CERTIFICATE OF COMPLETION")

	pdf.SetFont("Helvetica", "", 14)
	pdf.SetTextColor(100, 116, 139)
	centerText(pdf, tr, cx, 210, "This is to certify that")

	pdf.SetFont("Helvetica", "B", 36)
	pdf.SetTextColor(4, 40, 91)
	centerText(pdf, tr, cx, 272, c.RecipientName)

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(2)
	pdf.Line(cx-175, 282, cx+175, 282)

	pdf.SetFont("Helvetica", "", 16)
	pdf.SetTextColor(51, 65, 85)
	for i, line := range pdf.SplitLines([]byte(tr(CertificateText(c))), pageWidth-170) {
		s := string(line)
		pdf.Text(cx-pdf.GetStringWidth(s)/2, 312+float64(i)*25, s)
	}

	issued := c.CreatedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	pdf.SetFont("Courier", "", 10)
	pdf.SetTextColor(71, 85, 105)
	pdf.Text(40, pageHeight-70, tr("Certificate ID: "+c.CertificateID))
	pdf.Text(40, pageHeight-55, tr("Issue Date: "+helpers.FormatSlashDate(issued)))

	if link := g.VerifyURL(c.CertificateID); link != "" {
		if err := drawQRCode(pdf, link, pageWidth-40-certQRSize, pageHeight-40-certQRSize); err != nil {
			return nil, err
		}
	}

	return output(pdf)
}

func drawQRCode(pdf *gofpdf.Fpdf, content string, x, y float64) error {
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("encode verification QR code: %w", err)
	}
	name := "qr-" + content
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	pdf.ImageOptions(name, x, y, certQRSize, certQRSize, false, opts, 0, "")
	return nil
}
