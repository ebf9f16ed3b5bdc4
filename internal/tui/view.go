package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
	"github.com/ewilliams-labs/earworm/internal/core/game"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1DB954"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#1DB954"))
	slotStyle      = lipgloss.NewStyle().Width(48)
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#1DB954"))
	skippedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Italic(true)
	solutionBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.session.Snapshot()
	var b strings.Builder

	b.WriteString(titleStyle.Render("earworm"))
	if st.PlaylistName != "" {
		b.WriteString(dimStyle.Render("  " + st.PlaylistName))
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine(st))
	b.WriteString("\n\n")

	switch st.Phase {
	case game.PhaseWaiting:
		b.WriteString(dimStyle.Render("no tracks loaded"))
	case game.PhaseOver:
		b.WriteString(titleStyle.Render(fmt.Sprintf("game over, final score %d", st.Score)))
		b.WriteString("\n")
	default:
		b.WriteString(m.renderRound(st))
	}

	if st.Solution != nil {
		b.WriteString("\n")
		b.WriteString(m.renderSolution(st.Solution))
		b.WriteString("\n")
	}

	if m.message != "" {
		b.WriteString("\n" + m.message + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("enter guess · tab complete · ctrl+s skip · ctrl+n next · ctrl+p replay · ctrl+e end · esc quit"))
	return b.String()
}

func (m Model) renderStatusLine(st game.State) string {
	skips := "∞"
	if st.SkipsLeft != nil {
		skips = fmt.Sprintf("%d", *st.SkipsLeft)
	}
	track := min(st.TrackIndex+1, st.TrackCount)
	return dimStyle.Render(fmt.Sprintf("track %d/%d · score %d · skips %s · %s · %s",
		track, st.TrackCount, st.Score, skips, st.Mode, st.Difficulty))
}

func (m Model) renderRound(st game.State) string {
	r := st.Round
	var b strings.Builder

	for i := 0; i < domain.MaxGuesses; i++ {
		line := fmt.Sprintf("%d. ", i+1)
		switch {
		case i < len(r.Guesses) && r.Guesses[i] == game.SkippedGuess:
			line += skippedStyle.Render("skipped")
		case i < len(r.Guesses):
			text := r.Guesses[i]
			if r.Status == game.Solved.String() && i == len(r.Guesses)-1 {
				text = correctStyle.Render(text)
			}
			line += text
		default:
			line += dimStyle.Render("·")
		}
		b.WriteString(slotStyle.Render(line) + "\n")
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf("snippet %.1fs", float64(r.RevealWindowMs)/1000)))
	if r.CanSkip && r.Status == game.Guessing.String() {
		b.WriteString(dimStyle.Render(fmt.Sprintf(" · skip +%.1fs", float64(r.NextSkipGainMs)/1000)))
	}
	b.WriteString("\n\n")

	if r.Status == game.Guessing.String() {
		input := m.input
		if input == "" {
			input = dimStyle.Render(st.Placeholder)
		}
		b.WriteString("> " + input + "\n")
		for i, s := range m.suggestions {
			if i == m.selected {
				b.WriteString("  " + selectedStyle.Render(s) + "\n")
				continue
			}
			b.WriteString("  " + s + "\n")
		}
	}
	return b.String()
}

func (m Model) renderSolution(sol *game.SolutionView) string {
	border := solutionBorder
	if m.accent != "" {
		border = border.BorderForeground(lipgloss.Color(m.accent))
	}
	text := sol.Text
	if sol.ArtworkURL != "" && m.thumb == nil {
		text += "\n" + dimStyle.Render(sol.ArtworkURL)
	}
	if m.thumb == nil {
		return border.Render(text)
	}
	art := strings.Join(m.thumb, "\n")
	return border.Render(lipgloss.JoinHorizontal(lipgloss.Top, art, "  ", lipgloss.NewStyle().Width(40).Render(text)))
}
