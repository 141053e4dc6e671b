package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/flowboard/core/internal/domain/entities"
)

// Palette of the board.
var (
	colorFg      = lipgloss.Color("#c0caf5")
	colorDim     = lipgloss.Color("#565f89")
	colorPrimary = lipgloss.Color("#7aa2f7")
	colorBorder  = lipgloss.Color("#3b4261")
	colorWarn    = lipgloss.Color("#e0af68")
	colorError   = lipgloss.Color("#f7768e")
	colorOK      = lipgloss.Color("#9ece6a")
)

// Styles holds the pre-computed styles of the board.
type Styles struct {
	Title      lipgloss.Style
	Muted      lipgloss.Style
	Lane       lipgloss.Style
	LaneFocus  lipgloss.Style
	LaneTitle  lipgloss.Style
	Card       lipgloss.Style
	CardCursor lipgloss.Style
	ReadOnly   lipgloss.Style
	Banner     lipgloss.Style
	Error      lipgloss.Style
	Notice     lipgloss.Style
	Help       lipgloss.Style
	Input      lipgloss.Style
	Priority   map[entities.Priority]lipgloss.Style
}

// NewStyles builds the board styles.
func NewStyles() *Styles {
	lane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	return &Styles{
		Title:      lipgloss.NewStyle().Foreground(colorPrimary).Bold(true),
		Muted:      lipgloss.NewStyle().Foreground(colorDim),
		Lane:       lane,
		LaneFocus:  lane.BorderForeground(colorPrimary),
		LaneTitle:  lipgloss.NewStyle().Foreground(colorFg).Bold(true).MarginBottom(1),
		Card:       lipgloss.NewStyle().Foreground(colorFg),
		CardCursor: lipgloss.NewStyle().Foreground(colorPrimary).Bold(true),
		ReadOnly:   lipgloss.NewStyle().Foreground(colorDim),
		Banner:     lipgloss.NewStyle().Foreground(colorWarn),
		Error:      lipgloss.NewStyle().Foreground(colorError),
		Notice:     lipgloss.NewStyle().Foreground(colorOK),
		Help:       lipgloss.NewStyle().Foreground(colorDim).MarginTop(1),
		Input:      lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(colorBorder).Padding(0, 1),
		Priority: map[entities.Priority]lipgloss.Style{
			entities.PriorityHigh:   lipgloss.NewStyle().Foreground(colorError),
			entities.PriorityMedium: lipgloss.NewStyle().Foreground(colorWarn),
			entities.PriorityLow:    lipgloss.NewStyle().Foreground(colorOK),
		},
	}
}
