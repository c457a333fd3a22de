// Package textlayout lays out letter templates into a fixed-width column.
//
// A template is split into paragraphs on blank lines. Inside a paragraph,
// {{key}} placeholders are replaced by data values rendered in bold; missing
// values render as [key]. Words are packed greedily into lines measured with
// each word's own font metrics. Every line but the last of a paragraph is
// fully justified by stretching the gaps between words.
//
// The line breaking is a pure function of the token stream, the column width
// and a Measurer, so it can be tested without a rendering surface.
package textlayout

import (
	"regexp"
	"strings"
	"unicode"
)

// Style selects the font face for a run of text
type Style uint8

const (
	Regular Style = iota
	Bold
)

func (s Style) String() string {
	if s == Bold {
		return "bold"
	}
	return "regular"
}

// Measurer reports the rendered width of text in a style
type Measurer interface {
	TextWidth(text string, style Style) float64
}

// Drawer draws text with its baseline starting at (x, y)
type Drawer interface {
	Measurer
	DrawText(x, y float64, text string, style Style)
}

// Run is a stretch of paragraph text sharing one style
type Run struct {
	Text  string
	Style Style
}

// Token is a word or a single logical space
type Token struct {
	Text  string
	Style Style
	Space bool
}

// Segment is a word placed on a line. Offset is measured from the line start.
type Segment struct {
	Text   string
	Style  Style
	Width  float64
	Offset float64
}

// Line is one output line of a paragraph
type Line struct {
	Segments []Segment
	// WordWidth is the summed width of the words, excluding gaps
	WordWidth float64
	// Gaps is the number of inter-word spaces
	Gaps int
	// SpaceWidth is the width rendered for every gap on this line
	SpaceWidth float64
	Justified  bool
}

// Width is the rendered width of the line
func (l Line) Width() float64 {
	return l.WordWidth + float64(l.Gaps)*l.SpaceWidth
}

// Options positions the column on the page
type Options struct {
	X, Y         float64
	MaxWidth     float64
	LineHeight   float64
	ParagraphGap float64
}

// Placement is a word with absolute page coordinates
type Placement struct {
	Text  string
	Style Style
	X, Y  float64
}

// Layout is the result of Plan
type Layout struct {
	// Paragraphs holds the broken lines of every paragraph in order
	Paragraphs [][]Line
	Placements []Placement
	// FinalY is the cursor position after the last line
	FinalY float64
}

var (
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
	placeholder    = regexp.MustCompile(`\{\{(.*?)\}\}`)
)

// SplitParagraphs splits a template on blank-line boundaries
func SplitParagraphs(template string) []string {
	return paragraphBreak.Split(template, -1)
}

// ParseRuns substitutes {{key}} placeholders. Literal text becomes Regular
// runs and substituted values become Bold runs. A key with no value, or an
// empty one, renders as [key].
func ParseRuns(paragraph string, data map[string]string) []Run {
	var runs []Run
	last := 0
	for _, m := range placeholder.FindAllStringSubmatchIndex(paragraph, -1) {
		if m[0] > last {
			runs = append(runs, Run{Text: paragraph[last:m[0]], Style: Regular})
		}
		key := strings.TrimSpace(paragraph[m[2]:m[3]])
		value := data[key]
		if value == "" {
			value = "[" + key + "]"
		}
		runs = append(runs, Run{Text: value, Style: Bold})
		last = m[1]
	}
	if last < len(paragraph) {
		runs = append(runs, Run{Text: paragraph[last:], Style: Regular})
	}
	return runs
}

// Tokenize turns runs into words and spaces. Any whitespace between words,
// even across runs, collapses into one Regular space, and leading and
// trailing whitespace is dropped.
func Tokenize(runs []Run) []Token {
	var tokens []Token
	pendingSpace := false
	for _, r := range runs {
		text := r.Text
		for len(text) > 0 {
			i := strings.IndexFunc(text, unicode.IsSpace)
			if i == 0 {
				pendingSpace = true
				j := strings.IndexFunc(text, func(c rune) bool { return !unicode.IsSpace(c) })
				if j < 0 {
					break
				}
				text = text[j:]
				continue
			}
			word := text
			if i > 0 {
				word, text = text[:i], text[i:]
			} else {
				text = ""
			}
			if pendingSpace && len(tokens) > 0 {
				tokens = append(tokens, Token{Text: " ", Space: true})
			}
			pendingSpace = false
			tokens = append(tokens, Token{Text: word, Style: r.Style})
		}
	}
	return tokens
}

// BreakLines packs tokens greedily into lines no wider than maxWidth, using
// the natural space width while packing. Adjacent words with no space between
// them, such as a placeholder and its trailing comma, move as one unit. A unit
// that would overflow a non-empty line starts the next one; a space that would
// overflow is dropped. A single unit wider than maxWidth gets a line of its own.
//
// Every line except the last is justified when it has at least one gap and
// its words are narrower than maxWidth: each gap is widened to
// (maxWidth - WordWidth) / Gaps. The last line keeps natural spacing.
func BreakLines(tokens []Token, maxWidth float64, m Measurer) []Line {
	space := m.TextWidth(" ", Regular)

	var (
		lines []Line
		cur   []Token
		width float64
	)
	for i := 0; i < len(tokens); {
		j, w := i+1, space
		if !tokens[i].Space {
			j, w = i, 0
			for j < len(tokens) && !tokens[j].Space {
				w += m.TextWidth(tokens[j].Text, tokens[j].Style)
				j++
			}
		}
		group := tokens[i:j]
		i = j

		if width+w > maxWidth && len(cur) > 0 {
			lines = append(lines, finishLine(cur, false, maxWidth, space, m))
			cur, width = nil, 0
			if group[0].Space {
				continue
			}
		}
		cur = append(cur, group...)
		width += w
	}
	if len(cur) > 0 {
		lines = append(lines, finishLine(cur, true, maxWidth, space, m))
	}
	return lines
}

func finishLine(tokens []Token, last bool, maxWidth, space float64, m Measurer) Line {
	for len(tokens) > 0 && tokens[len(tokens)-1].Space {
		tokens = tokens[:len(tokens)-1]
	}

	line := Line{SpaceWidth: space}
	widths := make([]float64, len(tokens))
	for i, tok := range tokens {
		if tok.Space {
			line.Gaps++
			continue
		}
		widths[i] = m.TextWidth(tok.Text, tok.Style)
		line.WordWidth += widths[i]
	}

	if !last && line.Gaps > 0 && line.WordWidth < maxWidth {
		line.SpaceWidth = (maxWidth - line.WordWidth) / float64(line.Gaps)
		line.Justified = true
	}

	cursor := 0.0
	for i, tok := range tokens {
		if tok.Space {
			cursor += line.SpaceWidth
			continue
		}
		line.Segments = append(line.Segments, Segment{
			Text:   tok.Text,
			Style:  tok.Style,
			Width:  widths[i],
			Offset: cursor,
		})
		cursor += widths[i]
	}
	return line
}

// Plan lays out the whole template. The first line is placed at opts.Y and
// every line advances the cursor by LineHeight; ParagraphGap is added after
// every paragraph but the last.
func Plan(m Measurer, template string, data map[string]string, opts Options) Layout {
	paragraphs := SplitParagraphs(template)
	layout := Layout{Paragraphs: make([][]Line, 0, len(paragraphs))}

	y := opts.Y
	for i, para := range paragraphs {
		lines := BreakLines(Tokenize(ParseRuns(para, data)), opts.MaxWidth, m)
		for _, line := range lines {
			for _, seg := range line.Segments {
				layout.Placements = append(layout.Placements, Placement{
					Text:  seg.Text,
					Style: seg.Style,
					X:     opts.X + seg.Offset,
					Y:     y,
				})
			}
			y += opts.LineHeight
		}
		layout.Paragraphs = append(layout.Paragraphs, lines)
		if i < len(paragraphs)-1 {
			y += opts.ParagraphGap
		}
	}
	layout.FinalY = y
	return layout
}

// Render plans the template and draws every word on d, returning the Y
// coordinate after the last line.
func Render(d Drawer, template string, data map[string]string, opts Options) float64 {
	layout := Plan(d, template, data, opts)
	for _, p := range layout.Placements {
		d.DrawText(p.X, p.Y, p.Text, p.Style)
	}
	return layout.FinalY
}
