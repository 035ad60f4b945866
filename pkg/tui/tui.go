// Package tui provides a terminal user interface for bpm2ms
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/bpm2ms/pkg/converter"
)

var (
	// Palette
	accentBlue = lipgloss.Color("#1A66FF")
	accentGrn  = lipgloss.Color("#1A9933")
	warnAmber  = lipgloss.Color("#FFB000")
	softGray   = lipgloss.Color("#999999")
	darkGray   = lipgloss.Color("#333333")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Width(14)

	msStyle = lipgloss.NewStyle().
			Foreground(accentBlue)

	secStyle = lipgloss.NewStyle().
			Foreground(accentGrn)

	noteStyle = lipgloss.NewStyle().
			Foreground(accentBlue).
			Bold(true)

	formulaStyle = lipgloss.NewStyle().
			Foreground(softGray).
			Italic(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(warnAmber).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentBlue).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateInput State = iota
	StateFilePicker
	StateLoading
)

// Model represents the TUI model
type Model struct {
	state      State
	input      textinput.Model
	note       converter.Subdivision
	table      table.Model
	filePicker filepicker.Model
	spinner    spinner.Model
	result     *converter.Duration
	warning    string
	err        error
	loading    string
	width      int
	height     int
}

// tempoLoadedMsg carries the tempo read from a MIDI file
type tempoLoadedMsg struct {
	path  string
	tempo converter.Tempo
	err   error
}

// New creates a new TUI model with note preselected
func New(note converter.Subdivision) Model {
	if !note.Valid() {
		note = converter.Quarter
	}

	ti := textinput.New()
	ti.Placeholder = "120"
	ti.Prompt = "BPM: "
	ti.CharLimit = 16
	ti.Width = 20
	ti.Focus()

	tbl := table.New(
		table.WithColumns([]table.Column{
			{Title: "Note", Width: 40},
			{Title: "Milliseconds", Width: 14},
			{Title: "Seconds", Width: 10},
		}),
		table.WithHeight(len(converter.TableSubdivisions())+1),
		table.WithFocused(false),
	)

	fp := filepicker.New()
	fp.AllowedTypes = []string{".mid", ".midi"}
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accentBlue)

	return Model{
		state:      StateInput,
		input:      ti,
		note:       note,
		table:      tbl,
		filePicker: fp,
		spinner:    s,
	}
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The file picker needs to receive all messages while open
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateInput
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.loading = path
			m.state = StateLoading
			return m, tea.Batch(m.spinner.Tick, loadTempo(path))
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		if m.state == StateInput {
			return m.updateInput(msg)
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.state != StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tempoLoadedMsg:
		m.state = StateInput
		m.loading = ""
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.input.SetValue(converter.FormatBPM(msg.tempo))
		m.input.CursorEnd()
		return m.convert(), nil
	}

	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		return m.convert(), nil
	case "left", "up":
		if m.note > converter.Whole {
			m.note--
		}
		return m, nil
	case "right", "down":
		if m.note < converter.OneHundredTwentyEighth {
			m.note++
		}
		return m, nil
	case "ctrl+l":
		return m.clear(), nil
	case "ctrl+o":
		m.state = StateFilePicker
		return m, m.filePicker.Init()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// convert validates the input and refreshes the result and table. On a
// validation error the previous results stay on screen.
func (m Model) convert() Model {
	tempo, advisory, err := converter.ParseTempo(m.input.Value())
	if err != nil {
		m.err = err
		m.warning = ""
		return m
	}

	m.err = nil
	m.warning = advisory.String()

	d := converter.Convert(tempo, m.note)
	m.result = &d

	tbl := converter.BuildTable(tempo)
	rows := make([]table.Row, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		rows = append(rows, table.Row{
			row.Subdivision.String(),
			fmt.Sprintf("%.2f", row.Milliseconds),
			fmt.Sprintf("%.3f", row.Seconds),
		})
	}
	m.table.SetRows(rows)
	return m
}

// clear resets the input and the single result; the table is kept
func (m Model) clear() Model {
	m.input.SetValue("")
	m.note = converter.Quarter
	m.result = nil
	m.err = nil
	m.warning = ""
	return m
}

func loadTempo(path string) tea.Cmd {
	return func() tea.Msg {
		tempo, err := converter.ReadTempoFile(path)
		return tempoLoadedMsg{path: path, tempo: tempo, err: err}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" BPM TO MILLISECONDS CONVERTER "))
	s.WriteString("\n")

	switch m.state {
	case StateInput:
		s.WriteString(m.viewInput())
		s.WriteString("\n")
		s.WriteString(helpStyle.Render("enter: convert • ←/→: note value • ctrl+o: load MIDI • ctrl+l: clear • esc: quit"))
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateLoading:
		s.WriteString(m.viewLoading())
	}

	return s.String()
}

func (m Model) viewInput() string {
	var s strings.Builder

	s.WriteString(m.input.View())
	s.WriteString("\n")
	s.WriteString(labelStyle.Render("Note Value:"))
	s.WriteString(noteStyle.Render(fmt.Sprintf("◂ %s ▸", m.note)))
	s.WriteString("\n\n")

	ms, sec := "0.00 ms", "0.00 s"
	if m.result != nil {
		ms = converter.FormatMilliseconds(m.result.Milliseconds)
		sec = converter.FormatSeconds(m.result.Seconds)
	}
	s.WriteString(labelStyle.Render("Milliseconds:"))
	s.WriteString(msStyle.Render(ms))
	s.WriteString("\n")
	s.WriteString(labelStyle.Render("Seconds:"))
	s.WriteString(secStyle.Render(sec))
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s", m.err)))
		s.WriteString("\n")
	}
	if m.warning != "" {
		s.WriteString("\n")
		s.WriteString(warnStyle.Render(fmt.Sprintf("! %s", m.warning)))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(formulaStyle.Render(converter.Formula))
	s.WriteString("\n\n")
	s.WriteString(lipgloss.NewStyle().Bold(true).Render("All Subdivisions (1/4 to 1/128)"))
	s.WriteString("\n")
	s.WriteString(m.table.View())

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT MIDI FILE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back"))

	return s.String()
}

func (m Model) viewLoading() string {
	return boxStyle.Render(fmt.Sprintf("%s Reading tempo from %s...", m.spinner.View(), filepath.Base(m.loading)))
}

// Run starts the TUI application
func Run(note converter.Subdivision) error {
	p := tea.NewProgram(New(note), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
