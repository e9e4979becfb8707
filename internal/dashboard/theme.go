package dashboard

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/ashureev/neurolens/internal/domain"
)

// Theme is the palette applied to a dashboard page.
type Theme struct {
	Background    string
	Panel         string
	Button        string
	UserChat      string
	AssistantChat string
	WarningBg     string
	WarningText   string
	InfoBg        string
	InfoText      string
	SuccessBg     string
	SuccessText   string
}

// BaseTheme styles the role gate and the caregiver view.
var BaseTheme = Theme{
	Background:    "#E6E6FA",
	Panel:         "#F3F0FB",
	Button:        "#B57EDC",
	UserChat:      "#E8DDF5",
	AssistantChat: "#F5F1FB",
	WarningBg:     "#FCE9D9",
	WarningText:   "#8A4B21",
	InfoBg:        "#E4EAF4",
	InfoText:      "#304866",
	SuccessBg:     "#E2F0E6",
	SuccessText:   "#2F5D3B",
}

var modeThemes = map[domain.ComfortMode]Theme{
	domain.ModeCalm: {
		Background:    "#EAF7F2",
		Panel:         "#D5EFE5",
		Button:        "#4C9F84",
		UserChat:      "#CDEBDD",
		AssistantChat: "#E9F7F1",
		WarningBg:     "#FCE9D9",
		WarningText:   "#8A4B21",
		InfoBg:        "#DDF1E9",
		InfoText:      "#1F6A4F",
		SuccessBg:     "#D7F3E4",
		SuccessText:   "#175A43",
	},
	domain.ModeFocus: {
		Background:    "#FFF7E8",
		Panel:         "#FFE6B8",
		Button:        "#D98E04",
		UserChat:      "#FFE0A6",
		AssistantChat: "#FFF1D6",
		WarningBg:     "#FFE3CC",
		WarningText:   "#8A3E00",
		InfoBg:        "#FFF0CC",
		InfoText:      "#7A4B00",
		SuccessBg:     "#FFE9B8",
		SuccessText:   "#6B4A00",
	},
	domain.ModeNeutral: {
		Background:    "#F1F2F6",
		Panel:         "#DEE1EA",
		Button:        "#687086",
		UserChat:      "#D7DCE8",
		AssistantChat: "#ECEFF5",
		WarningBg:     "#F6E4E4",
		WarningText:   "#7D2E2E",
		InfoBg:        "#E4EAF4",
		InfoText:      "#304866",
		SuccessBg:     "#E2F0E6",
		SuccessText:   "#2F5D3B",
	},
}

// ThemeFor returns the palette of a comfort mode, falling back to BaseTheme.
func ThemeFor(mode domain.ComfortMode) Theme {
	if t, ok := modeThemes[mode]; ok {
		return t
	}
	return BaseTheme
}

// Vars renders the palette as CSS custom properties for a style attribute.
// Values are fixed hex literals, never user input.
func (t Theme) Vars() template.CSS {
	pairs := []struct{ name, value string }{
		{"bg", t.Background},
		{"panel", t.Panel},
		{"button", t.Button},
		{"user-chat", t.UserChat},
		{"assistant-chat", t.AssistantChat},
		{"warning-bg", t.WarningBg},
		{"warning-text", t.WarningText},
		{"info-bg", t.InfoBg},
		{"info-text", t.InfoText},
		{"success-bg", t.SuccessBg},
		{"success-text", t.SuccessText},
	}
	var sb strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&sb, "--%s: %s; ", p.name, p.value)
	}
	return template.CSS(strings.TrimSpace(sb.String())) //nolint:gosec // palette is constant
}
