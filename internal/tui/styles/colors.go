package styles

import "github.com/charmbracelet/lipgloss"

// Desk palette: dark slate surfaces, cyan for focus and data, gold for
// money figures.
var (
	BgDeep    = lipgloss.Color("#0b0f16") // screen background
	BgPanel   = lipgloss.Color("#121722") // tables, even rows
	BgSurface = lipgloss.Color("#1b2130") // cards, odd rows
	BgHover   = lipgloss.Color("#252d3f") // cursor row

	AccentPrimary   = lipgloss.Color("#4fc1ff") // focus, sparklines, titles
	AccentSecondary = lipgloss.Color("#39c5bb") // tabs
	AccentTertiary  = lipgloss.Color("#a78bfa") // confirmation dialogs
	AccentGold      = lipgloss.Color("#f5a623") // prices, warnings on stderr

	// Submission and check outcomes.
	StatusOK    = lipgloss.Color("#22c55e")
	StatusWarn  = lipgloss.Color("#f59e0b")
	StatusError = lipgloss.Color("#ef4444")
	StatusInfo  = lipgloss.Color("#60a5fa")

	TextPrimary   = lipgloss.Color("#e2e8f0")
	TextSecondary = lipgloss.Color("#94a3b8")
	TextMuted     = lipgloss.Color("#64748b")

	BorderNormal = lipgloss.Color("#2d3748")
)
