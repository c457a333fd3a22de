package pdfgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/tarcin/docissuer/internal/app/models"
	"github.com/tarcin/docissuer/internal/pkg/helpers"
	"github.com/tarcin/docissuer/internal/pkg/textlayout"
)

const (
	letterFont     = "Courier"
	letterFontSize = 10.0
	letterMargin   = 20.0
	letterBody     = 170.0
)

// LetterData returns the placeholder values for a letter body. Dates are
// rendered as "January 2, 2006" when they parse. Position falls back to the
// course name and then "Intern"; the letter date falls back to the creation
// date as DD/MM/YYYY.
func LetterData(l *models.Letter) map[string]string {
	v := helpers.StringValue
	data := map[string]string{
		"recipientName":  strings.TrimSpace(l.RecipientName),
		"internId":       v(l.InternID),
		"courseName":     v(l.CourseName),
		"projectTitle":   v(l.ProjectTitle),
		"department":     v(l.Department),
		"duration":       v(l.Duration),
		"startDate":      helpers.FormatLetterDate(v(l.StartDate)),
		"endDate":        helpers.FormatLetterDate(v(l.EndDate)),
		"completionDate": helpers.FormatLetterDate(v(l.CompletionDate)),
	}

	switch {
	case v(l.Position) != "":
		data["position"] = v(l.Position)
	case data["courseName"] != "":
		data["position"] = data["courseName"]
	default:
		data["position"] = "Intern"
	}

	data["date"] = v(l.LetterDate)
	if data["date"] == "" {
		created := l.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		data["date"] = helpers.FormatSlashDate(created)
	}
	return data
}

// Letter renders an offer or completion letter on an A4 portrait page in mm
func (g *Generator) Letter(l *models.Letter) ([]byte, error) {
	body, ok := g.templates[l.LetterType]
	if !ok {
		return nil, fmt.Errorf("no template for letter type %q", l.LetterType)
	}

	pdf := g.newDocument("P", "mm", fmt.Sprintf("%s letter - %s", l.LetterType, l.RecipientName))
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageWidth, _ := pdf.GetPageSize()
	data := LetterData(l)

	switch l.LetterType {
	case models.LetterOffer:
		g.drawBackground(pdf, OfferBackground)
	default:
		g.drawBackground(pdf, CompletionBackground)
	}
	pdf.SetTextColor(0, 0, 0)

	opts := textlayout.Options{
		X:            letterMargin,
		MaxWidth:     letterBody,
		ParagraphGap: 10,
	}

	switch l.LetterType {
	case models.LetterOffer:
		y := 65.0
		pdf.SetFont(letterFont, "B", letterFontSize)
		pdf.Text(letterMargin, y, tr("Date: "+data["date"]))

		y += 6
		pdf.Text(letterMargin, y, tr(fmt.Sprintf("Dear %s,", data["recipientName"])))

		y += 8
		pdf.SetFont("Helvetica", "B", letterFontSize)
		centerText(pdf, tr, pageWidth/2, y, "SUB: Our offer for the position of "+data["position"])

		opts.Y = y + 10
		opts.LineHeight = 6

	case models.LetterCompletion:
		y := 30.0
		pdf.SetFont(letterFont, "B", letterFontSize)
		date := tr("Date: " + data["date"])
		pdf.Text(pageWidth-letterMargin-pdf.GetStringWidth(date), y, date)

		y += 20
		pdf.SetFont("Helvetica", "B", 14)
		centerText(pdf, tr, pageWidth/2, y, "TO WHOM SO EVER IT MAY CONCERN")

		opts.Y = y + 20
		opts.LineHeight = 7
	}

	textlayout.Render(newDrawer(pdf, letterFont, letterFontSize), body, data, opts)
	return output(pdf)
}
