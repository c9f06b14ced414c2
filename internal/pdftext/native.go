package pdftext

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// NativeExtractor reads the text layer with ledongthuc/pdf, no external tools.
type NativeExtractor struct{}

// NewNativeExtractor creates a NativeExtractor.
func NewNativeExtractor() *NativeExtractor {
	return &NativeExtractor{}
}

// ExtractText implements Extractor. The library panics on some malformed
// files; that is reported as an error.
func (e *NativeExtractor) ExtractText(ctx context.Context, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader crashed on %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	if n == 0 {
		return "", noTextError(path)
	}

	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		content, err := pageText(p)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		pages = append(pages, content)
	}
	return joinPages(path, pages)
}

// pageText returns one line per visual row so the line-oriented parsers see
// the same layout as pdftotext. GetTextByRow only follows Tm, so a page
// positioned with Td collapses into a single row; glyph coordinates from
// Content are used then, and plain text is the last resort.
func pageText(p pdf.Page) (string, error) {
	if lines := textByRow(p); len(lines) > 1 {
		return strings.Join(lines, "\n"), nil
	}
	if lines := textByContent(p); len(lines) > 0 {
		return strings.Join(lines, "\n"), nil
	}
	return p.GetPlainText(nil)
}

func textByRow(p pdf.Page) []string {
	rows, err := p.GetTextByRow()
	if err != nil {
		return nil
	}
	var lines []string
	for _, row := range rows {
		parts := make([]string, 0, len(row.Content))
		for _, word := range row.Content {
			parts = append(parts, word.S)
		}
		if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// textByContent groups glyphs on the rounded baseline, top to bottom, and
// orders each row left to right. A gap wider than a glyph starts a new word.
func textByContent(p pdf.Page) (lines []string) {
	defer func() {
		if r := recover(); r != nil {
			lines = nil
		}
	}()

	rowMap := make(map[int][]pdf.Text)
	for _, t := range p.Content().Text {
		y := int(math.Round(t.Y))
		rowMap[y] = append(rowMap[y], t)
	}

	ys := make([]int, 0, len(rowMap))
	for y := range rowMap {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ys)))

	for _, y := range ys {
		glyphs := rowMap[y]
		// Fonts without a Widths array report zero advance; stable order keeps
		// their glyphs in content stream order.
		sort.SliceStable(glyphs, func(a, b int) bool { return glyphs[a].X < glyphs[b].X })

		var sb strings.Builder
		for i, g := range glyphs {
			if i > 0 {
				prev := glyphs[i-1]
				if g.X-(prev.X+prev.W) > math.Max(prev.FontSize, 1)/2 && prev.S != " " && g.S != " " {
					sb.WriteByte(' ')
				}
			}
			sb.WriteString(g.S)
		}
		if line := strings.Join(strings.Fields(sb.String()), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
