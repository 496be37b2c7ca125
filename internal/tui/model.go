// Package tui is the terminal rendition of the countdown widget.
//
// The model never owns widget state: it forwards key presses to the widget.Controller
// and redraws from the views the controller publishes, so the staggered transitions
// and refresh cycles behave exactly as they do on the HTTP surface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pfrederiksen/sheet-countdown/internal/logger"
	"github.com/pfrederiksen/sheet-countdown/internal/widget"
)

// noticeTTL is how long the save confirmation stays on screen.
const noticeTTL = 3 * time.Second

// Controller is the part of widget.Controller the terminal widget drives.
type Controller interface {
	Snapshot() widget.View
	OnChange(fn func(widget.View))
	Refresh(ctx context.Context) widget.View
	Toggle() error
	Save(row int) (string, error)
	OpenSheet() (string, error)
	DismissNotice()
}

type viewMsg widget.View

type dismissNoticeMsg struct{}

type statusMsg string

// Model is the Bubble Tea model of the widget.
type Model struct {
	ctl     Controller
	ctx     context.Context
	keys    keyMap
	input   textinput.Model
	view    widget.View
	updates chan widget.View
	status  string
	opener  func(url string) error
}

// NewModel subscribes to ctl and returns a model ready to run. ctx bounds
// the refreshes the model triggers itself.
func NewModel(ctx context.Context, ctl Controller, opener func(url string) error) *Model {
	if opener == nil {
		opener = OpenBrowser
	}

	ti := textinput.New()
	ti.Prompt = "Fila: "
	ti.CharLimit = 6
	ti.Width = 8

	m := &Model{
		ctl:     ctl,
		ctx:     ctx,
		keys:    defaultKeyMap(),
		input:   ti,
		view:    ctl.Snapshot(),
		updates: make(chan widget.View, 16),
		opener:  opener,
	}

	ctl.OnChange(func(v widget.View) {
		select {
		case m.updates <- v:
		default:
			// The model always redraws from the latest snapshot, so a dropped
			// update is only a skipped intermediate frame.
		}
	})
	return m
}

// waitForView blocks until the controller publishes a change.
func (m *Model) waitForView() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.updates:
			return viewMsg(m.ctl.Snapshot())
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) Init() tea.Cmd {
	return m.waitForView()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewMsg:
		return m, tea.Batch(m.applyView(widget.View(msg)), m.waitForView())

	case dismissNoticeMsg:
		m.ctl.DismissNotice()
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// applyView adopts a new controller view and syncs the row selector when
// the configuration panel opens.
func (m *Model) applyView(v widget.View) tea.Cmd {
	opened := v.State == widget.StateConfiguration && m.view.State != widget.StateConfiguration
	closed := v.State == widget.StateDisplay && m.view.State != widget.StateDisplay
	m.view = v

	var cmds []tea.Cmd
	if opened {
		m.input.SetValue(strconv.Itoa(v.Selector))
		m.input.CursorEnd()
		cmds = append(cmds, m.input.Focus())
	}
	if closed {
		m.input.Blur()
	}
	if v.Notice != "" {
		cmds = append(cmds, tea.Tick(noticeTTL, func(time.Time) tea.Msg { return dismissNoticeMsg{} }))
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	configuring := m.view.State == widget.StateConfiguration

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.toggle):
		if err := m.ctl.Toggle(); err != nil {
			m.status = err.Error()
		}
		return m, nil

	case key.Matches(msg, m.keys.open):
		return m, m.openSheet()

	case configuring && key.Matches(msg, m.keys.save):
		return m, m.save()

	case !configuring && key.Matches(msg, m.keys.refresh):
		return m, func() tea.Msg {
			m.ctl.Refresh(m.ctx)
			return nil
		}
	}

	if configuring && isEditKey(msg) {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// isEditKey reports whether msg belongs in the numeric row selector.
func isEditKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete, tea.KeyLeft, tea.KeyRight, tea.KeyHome, tea.KeyEnd:
		return true
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	}
	return false
}

func (m *Model) save() tea.Cmd {
	row, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
	if err != nil || row < 1 {
		m.status = "La fila debe ser un número entero positivo"
		return nil
	}

	if _, err := m.ctl.Save(row); err != nil {
		logger.Error("Saving row from terminal failed", logger.Fields{"row": row}, err)
		m.status = err.Error()
		return nil
	}
	m.status = ""
	return nil
}

func (m *Model) openSheet() tea.Cmd {
	url, err := m.ctl.OpenSheet()
	if err != nil {
		m.status = err.Error()
		return nil
	}
	return func() tea.Msg {
		if err := m.opener(url); err != nil {
			logger.Warn("Opening spreadsheet failed", logger.Fields{"url": url, "err": err.Error()})
			return statusMsg(fmt.Sprintf("Abrir manualmente: %s", url))
		}
		return statusMsg("")
	}
}

func (m *Model) View() string {
	v := m.view
	var panels []string

	if v.Display.Visible {
		title := titleStyle.Render(v.Title)
		days := daysStyle.Render(v.Label)
		if v.Err != nil || v.Error != "" {
			title = errorStyle.Render(v.Title)
		}
		panels = append(panels, fade(v.Display, lipgloss.JoinVertical(lipgloss.Center, title, "", days)))
	}

	if v.Config.Visible {
		panels = append(panels, fade(v.Config, m.input.View()))
	}

	card := cardStyle.Render(lipgloss.JoinVertical(lipgloss.Center, panels...))
	header := lipgloss.PlaceHorizontal(lipgloss.Width(card), lipgloss.Right, toggleStyle.Render(v.ToggleGlyph))

	lines := []string{header, card}
	if v.Notice != "" {
		lines = append(lines, noticeStyle.Render(v.Notice))
	}
	if m.status != "" {
		lines = append(lines, errorStyle.Render(m.status))
	}
	lines = append(lines, helpStyle.Render(m.helpLine()))

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) helpLine() string {
	bindings := []key.Binding{m.keys.toggle, m.keys.open, m.keys.refresh, m.keys.quit}
	if m.view.State == widget.StateConfiguration {
		bindings = []key.Binding{m.keys.save, m.keys.toggle, m.keys.open, m.keys.quit}
	}

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

func fade(p widget.Panel, content string) string {
	if p.Hidden {
		return fadedStyle.Render(content)
	}
	return content
}

// Run starts the terminal widget and blocks until the user quits or ctx is canceled.
func Run(ctx context.Context, ctl Controller, opts ...tea.ProgramOption) error {
	m := NewModel(ctx, ctl, nil)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)

	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("running terminal widget: %w", err)
	}
	return nil
}
