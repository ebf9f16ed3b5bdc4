package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
	"github.com/ewilliams-labs/earworm/internal/core/game"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case playbackMsg:
		return m.handlePlayback(msg)

	case artworkMsg:
		if msg.url == m.artURL && msg.err == nil {
			m.thumb = msg.thumb
			m.accent = msg.accent
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handlePlayback(msg playbackMsg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	if msg.err == nil {
		if err := m.syncCue(); err != nil {
			m.err = err
		} else if _, err := m.guard.Observe(m.ctx, m.session.Token(), msg.update); err != nil {
			m.err = err
		}
	}
	return m, m.pollCmd()
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		_ = m.player.Pause(m.ctx)
		return m, tea.Quit

	case "enter":
		return m.submit()

	case "tab":
		if len(m.suggestions) > 0 {
			m.input = m.suggestions[m.selected]
			m.refreshSuggestions()
		}
		return m, nil

	case "up":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "down":
		if m.selected < len(m.suggestions)-1 {
			m.selected++
		}
		return m, nil

	case "ctrl+s":
		return m.skip()

	case "ctrl+n":
		return m.next()

	case "ctrl+e":
		return m.end()

	case "ctrl+p":
		m.replay()
		return m, nil

	case "backspace":
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
			m.refreshSuggestions()
		}
		return m, nil
	}

	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		m.input += string(msg.Runes)
		if msg.Type == tea.KeySpace && len(msg.Runes) == 0 {
			m.input += " "
		}
		m.refreshSuggestions()
	}
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	before := m.session.Token()
	out, err := m.session.Guess(m.input)
	switch {
	case errors.Is(err, domain.ErrEmptyGuess):
		m.message = "type a guess first"
		return m, nil
	case errors.Is(err, domain.ErrUnresolvedUser):
		m.message = "contributor name unknown, counted as wrong"
	case err != nil:
		m.err = err
		return m, m.pauseIfOver()
	case out.Correct:
		m.message = fmt.Sprintf("correct! +%d, press ctrl+n for the next track", out.Points)
	default:
		m.message = "wrong"
	}
	m.err = nil
	m.input = ""
	m.refreshSuggestions()
	if m.session.Token() != before {
		m.startTrack()
	}
	cmd := tea.Batch(m.artworkCmd(), m.pauseIfOver())
	return m, cmd
}

func (m Model) skip() (tea.Model, tea.Cmd) {
	if _, err := m.session.Skip(); err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.message = "skipped"
	if err := m.syncCue(); err != nil {
		m.err = err
	}
	m.replay()
	return m, nil
}

func (m Model) next() (tea.Model, tea.Cmd) {
	points, err := m.session.Next()
	if err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.message = fmt.Sprintf("+%d", points)
	m.startTrack()
	cmd := tea.Batch(m.artworkCmd(), m.pauseIfOver())
	return m, cmd
}

func (m Model) end() (tea.Model, tea.Cmd) {
	if err := m.session.ForceEnd(); err != nil {
		m.err = err
		return m, nil
	}
	cmd := tea.Batch(m.artworkCmd(), m.pauseIfOver())
	return m, cmd
}

// pauseIfOver stops the music once the session is finished. The program keeps
// running so the final score stays on screen.
func (m Model) pauseIfOver() tea.Cmd {
	if m.session.Phase() != game.PhaseOver {
		return nil
	}
	_ = m.player.Pause(m.ctx)
	return nil
}
