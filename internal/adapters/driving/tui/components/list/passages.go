// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/resumerag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/resumerag/internal/core/domain"
)

// PassageList displays the passages retrieved for an answer.
type PassageList struct {
	hits     []domain.SearchHit
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewPassageList creates a new passage list component.
func NewPassageList(s *styles.Styles) *PassageList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &PassageList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// View renders the passage list.
func (p *PassageList) View() string {
	if len(p.hits) == 0 {
		return p.styles.Muted.Render("No passages retrieved")
	}

	lines := make([]string, 0, len(p.hits)*2+2)
	header := p.styles.Subtitle.Render(fmt.Sprintf("Passages (%d)", len(p.hits)))
	lines = append(lines, header, "")

	// Each passage takes two lines
	visibleCount := (p.height - 2) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if p.selected >= visibleCount {
		start = p.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(p.hits))

	for i := start; i < end; i++ {
		lines = append(lines, p.renderHit(i, &p.hits[i]))
	}

	return strings.Join(lines, "\n")
}

// renderHit formats a passage as a source line and a preview line.
func (p *PassageList) renderHit(index int, hit *domain.SearchHit) string {
	indicator := "  "
	if index == p.selected {
		indicator = "> "
	}

	source := hit.Chunk.Metadata.Source
	if hit.Chunk.Metadata.Page > 0 {
		source = fmt.Sprintf("%s (page %d)", source, hit.Chunk.Metadata.Page)
	}
	score := fmt.Sprintf("%.2f", hit.Score)

	var titleLine string
	if index == p.selected {
		titleLine = p.styles.Selected.Render(indicator + source + "  " + score)
	} else {
		titleLine = p.styles.Normal.Render(indicator+source+"  ") + p.styles.Muted.Render(score)
	}

	maxPreview := p.width - 6
	if maxPreview < 20 {
		maxPreview = 20
	}
	preview := truncate(strings.Join(strings.Fields(hit.Chunk.Text), " "), maxPreview)

	return titleLine + "\n" + p.styles.Muted.Render("    "+preview)
}

// truncate shortens s to n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SetHits replaces the passages and resets the selection.
func (p *PassageList) SetHits(hits []domain.SearchHit) {
	p.hits = hits
	p.selected = 0
}

// Hits returns the current passages.
func (p *PassageList) Hits() []domain.SearchHit {
	return p.hits
}

// Selected returns the index of the selected passage.
func (p *PassageList) Selected() int {
	return p.selected
}

// MoveUp moves selection up.
func (p *PassageList) MoveUp() {
	if p.selected > 0 {
		p.selected--
	}
}

// MoveDown moves selection down.
func (p *PassageList) MoveDown() {
	if p.selected < len(p.hits)-1 {
		p.selected++
	}
}

// SetDimensions sets the component dimensions.
func (p *PassageList) SetDimensions(width, height int) {
	p.width = width
	p.height = height
}

// Count returns the number of passages.
func (p *PassageList) Count() int {
	return len(p.hits)
}
