package tui

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	accent = lipgloss.Color("#5EEAD4")
	muted  = lipgloss.Color("#9CA3AF")

	nickColors = []lipgloss.Color{
		"#EAB308", "#A78BFA", "#34D399", "#60A5FA", "#F472B6", "#FB923C", "#93C5FD", "#FCA5A5",
	}

	borderColor = lipgloss.Color("#374151")
	rosterWidth = 20

	stampStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FDE68A"))
	statusStyle  = lipgloss.NewStyle().Foreground(accent)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	privateStyle = lipgloss.NewStyle().Foreground(muted).Italic(true)
	debugStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	rosterStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Width(rosterWidth)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1F2937")).
			Foreground(lipgloss.Color("#E5E7EB")).
			Padding(0, 1)
)

// nickColor picks a stable color for a nick.
func nickColor(nick string) lipgloss.Color {
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(strings.ToLower(nick)))

	return nickColors[hash.Sum32()%uint32(len(nickColors))]
}

func stamp(ev chatEvent) string {
	return ev.Time.Format("[15:04]")
}

// plainLine formats a chat event without styling. ok is false for events that aren't
// shown in the chat pane.
func plainLine(ev chatEvent) (line string, ok bool) {
	switch ev.Kind {
	case eventStatus:
		return fmt.Sprintf("%s == %s", stamp(ev), ev.Text), true
	case eventError:
		return fmt.Sprintf("%s !! %s", stamp(ev), ev.Text), true
	case eventChannel:
		return fmt.Sprintf("%s <%s> %s", stamp(ev), ev.Nick, ev.Text), true
	case eventPrivate:
		return fmt.Sprintf("%s [private] <%s> %s", stamp(ev), ev.Nick, ev.Text), true
	case eventEmote:
		return fmt.Sprintf("%s * %s %s", stamp(ev), ev.Nick, ev.Text), true
	case eventDebug:
		return fmt.Sprintf("%s %s %s", stamp(ev), ev.Direction, ev.Text), true
	}

	return "", false
}

// styledLine is plainLine with colors.
func styledLine(ev chatEvent) (line string, ok bool) {
	ts := stampStyle.Render(stamp(ev))
	nick := lipgloss.NewStyle().Foreground(nickColor(ev.Nick)).Bold(true)

	switch ev.Kind {
	case eventStatus:
		return ts + " " + statusStyle.Render("== "+ev.Text), true
	case eventError:
		return ts + " " + errorStyle.Render("!! "+ev.Text), true
	case eventChannel:
		return ts + " " + nick.Render("<"+ev.Nick+">") + " " + ev.Text, true
	case eventPrivate:
		return ts + " " + privateStyle.Render("[private]") + " " + nick.Render("<"+ev.Nick+">") + " " + ev.Text, true
	case eventEmote:
		return ts + " " + nick.Render("* "+ev.Nick) + " " + ev.Text, true
	case eventDebug:
		return ts + " " + debugStyle.Render(ev.Direction+" "+ev.Text), true
	}

	return "", false
}
