// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by NewTheme.
const (
	ModeDark  = "dark"
	ModeLight = "light"
	ModeAuto  = "auto"
)

// Theme holds the styled components of the chat screen.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// FRAME
	// ==========================================================================

	App            lipgloss.Style
	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	StatusBar      lipgloss.Style
	StatusKey      lipgloss.Style
	Muted          lipgloss.Style

	// ==========================================================================
	// AGENT SIDEBAR
	// ==========================================================================

	Sidebar         lipgloss.Style
	SidebarTitle    lipgloss.Style
	SidebarItem     lipgloss.Style
	SidebarCursor   lipgloss.Style
	SidebarActive   lipgloss.Style
	SidebarEmpty    lipgloss.Style
	SidebarError    lipgloss.Style
	SearchBox       lipgloss.Style
	SearchBoxActive lipgloss.Style

	// ==========================================================================
	// TRANSCRIPT
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	Timestamp       lipgloss.Style
	Typing          lipgloss.Style

	// Markup inside assistant bubbles.
	Bold       lipgloss.Style
	Italic     lipgloss.Style
	Strike     lipgloss.Style
	Link       lipgloss.Style
	InlineCode lipgloss.Style
	Heading    lipgloss.Style
	Quote      lipgloss.Style
	CodeBlock  lipgloss.Style
	TableRule  lipgloss.Style

	// ==========================================================================
	// INPUT AREA
	// ==========================================================================

	InputContainer lipgloss.Style
	InputFocused   lipgloss.Style
	InputDisabled  lipgloss.Style
	UploadPreview  lipgloss.Style

	// ==========================================================================
	// TOASTS
	// ==========================================================================

	ToastInfo    lipgloss.Style
	ToastWarning lipgloss.Style
	ToastError   lipgloss.Style
}

// NewTheme creates a theme for mode ("dark", "light" or "auto").
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch mode {
	case ModeLight:
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	case ModeDark:
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)
	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.StatusKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		MarginBottom(1)
	t.SidebarItem = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.SidebarCursor = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Bold(true)
	t.SidebarActive = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.SidebarEmpty = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)
	t.SidebarError = lipgloss.NewStyle().
		Foreground(Rose)
	t.SearchBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OverlayDim)
	t.SearchBoxActive = t.SearchBox.
		BorderForeground(Cyan)

	// Bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1).
		MarginLeft(4)
	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1).
		MarginRight(4)
	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)
	t.Typing = lipgloss.NewStyle().
		Foreground(Purple).
		Italic(true)

	// Markup
	t.Bold = lipgloss.NewStyle().Bold(true)
	t.Italic = lipgloss.NewStyle().Italic(true)
	t.Strike = lipgloss.NewStyle().Strikethrough(true)
	t.Link = lipgloss.NewStyle().
		Foreground(LinkColor).
		Underline(true)
	t.InlineCode = lipgloss.NewStyle().
		Foreground(InlineCodeFg).
		Background(InlineCodeBg)
	t.Heading = lipgloss.NewStyle().
		Foreground(HeadingColor).
		Bold(true)
	t.Quote = lipgloss.NewStyle().
		Foreground(TextSecondary).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(QuoteBar).
		PaddingLeft(1)
	t.CodeBlock = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(OverlayDim).
		Padding(0, 1)
	t.TableRule = lipgloss.NewStyle().
		Foreground(TableRuleColor)

	// Input
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OverlayDim).
		Padding(0, 1)
	t.InputFocused = t.InputContainer.
		BorderForeground(Cyan)
	t.InputDisabled = t.InputContainer.
		Foreground(TextMuted)
	t.UploadPreview = lipgloss.NewStyle().
		Foreground(Amber).
		Padding(0, 1)

	// Toasts
	toast := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 1)
	t.ToastInfo = toast.BorderForeground(Cyan).Foreground(Cyan)
	t.ToastWarning = toast.BorderForeground(Amber).Foreground(Amber)
	t.ToastError = toast.BorderForeground(Rose).Foreground(Rose)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// LayoutMode is the responsive layout picked from the terminal width.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns, sidebar hidden
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)

// GetLayoutMode returns the layout for the current width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// SidebarWidth returns the agent list width for the current layout.
func (t *Theme) SidebarWidth() int {
	switch t.GetLayoutMode() {
	case LayoutNarrow:
		return 0
	case LayoutMedium:
		return 24
	default:
		return 32
	}
}
