package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"weave-server/pkg/storyflow"
)

const PlaceHolderText = "Pick a choice (1/2), type your own, or /help..."

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	storyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config   *ConsoleConfig
	api      *apiClient
	machine  *storyflow.Machine
	genres   []string
	viewport viewport.Model
	textarea textarea.Model
	ready    bool
	width    int
	height   int
	notice   string
}

// transitionMsg reports a finished machine operation. The machine already
// holds the resulting state; err is only used to decide whether to scroll.
type transitionMsg struct {
	err error
}

func NewConsoleUI(cfg *ConsoleConfig, api *apiClient, machine *storyflow.Machine, genres []string) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	vp := viewport.New(50, 20)
	vp.MouseWheelEnabled = true

	return ConsoleUI{
		config:   cfg,
		api:      api,
		machine:  machine,
		genres:   genres,
		textarea: ta,
		viewport: vp,
		notice:   "Start with /new <prompt> or /generate <genre>.",
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.width - 4
		m.viewport.Height = m.height - 7
		m.textarea.SetWidth(m.width - 4)
		m.ready = true
		m.writeContent()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			return m.handleInput(input)
		}

	case transitionMsg:
		m.writeContent()
		return m, nil
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m ConsoleUI) handleInput(input string) (tea.Model, tea.Cmd) {
	switch {
	case input == "/help":
		m.notice = "Commands: /new <prompt>, /generate <genre>, /genres, /back, /quit. Anything else is a choice."
		m.writeContent()
		return m, nil

	case input == "/quit":
		return m, tea.Quit

	case input == "/genres":
		m.notice = "Genres: " + strings.Join(m.genres, ", ")
		m.writeContent()
		return m, nil

	case input == "/back":
		if !m.machine.GoBack() {
			m.notice = "Nothing to go back to."
		} else {
			m.notice = "Went back one segment. The next choice continues from the latest server chapter."
		}
		m.writeContent()
		return m, nil

	case strings.HasPrefix(input, "/new "):
		prompt := strings.TrimSpace(strings.TrimPrefix(input, "/new "))
		m.notice = ""
		m.writeContent()
		return m, m.startStory(prompt)

	case strings.HasPrefix(input, "/generate "):
		genre := strings.TrimSpace(strings.TrimPrefix(input, "/generate "))
		m.notice = ""
		m.writeContent()
		return m, m.generateStory(genre)

	case strings.HasPrefix(input, "/"):
		m.notice = "Unknown command. Try /help."
		m.writeContent()
		return m, nil

	default:
		m.notice = ""
		m.writeContent()
		return m, m.makeChoice(input)
	}
}

func (m ConsoleUI) startStory(prompt string) tea.Cmd {
	machine := m.machine
	timeout := m.config.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return transitionMsg{err: machine.StartNewStory(ctx, prompt)}
	}
}

func (m ConsoleUI) generateStory(genre string) tea.Cmd {
	machine := m.machine
	timeout := m.config.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return transitionMsg{err: machine.StartGeneratedStory(ctx, genre, "")}
	}
}

// makeChoice maps "1"/"2" onto the displayed choices; any other text is sent
// as a free-text choice and resolved server-side.
func (m ConsoleUI) makeChoice(input string) tea.Cmd {
	choice := storyflow.Choice{Text: input}
	if n, err := strconv.Atoi(input); err == nil {
		snapshot := m.machine.Snapshot()
		if snapshot.Current != nil && n >= 1 && n <= len(snapshot.Current.Choices) {
			choice = snapshot.Current.Choices[n-1]
		}
	}

	machine := m.machine
	timeout := m.config.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return transitionMsg{err: machine.MakeChoice(ctx, choice)}
	}
}

func (m *ConsoleUI) writeContent() {
	width := m.viewport.Width - 2
	if width < 20 {
		width = 20
	}

	state := m.machine.Snapshot()
	var content strings.Builder

	content.WriteString(titleStyle.Render("WEAVE") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, segment := range state.History {
		content.WriteString(storyStyle.Render(wordwrap.String(segment.Text, width)) + "\n\n")
	}

	if state.Current != nil {
		content.WriteString(storyStyle.Render(wordwrap.String(state.Current.Text, width)) + "\n\n")
		for i, choice := range state.Current.Choices {
			line := fmt.Sprintf("  %d. %s", i+1, choice.Text)
			content.WriteString(choiceStyle.Render(wordwrap.String(line, width)) + "\n")
		}
		content.WriteString("\n")
	}

	if state.Generating {
		content.WriteString(loadingStyle.Render("Weaving the next part of your story...") + "\n")
	}
	if state.Err != "" {
		content.WriteString(errorStyle.Render("Error: "+state.Err) + "\n")
	}
	if m.machine.DivergedFromServer() {
		content.WriteString(noticeStyle.Render("Viewing an earlier segment. Choosing continues from the latest chapter.") + "\n")
	}
	if m.notice != "" {
		content.WriteString(noticeStyle.Render(wordwrap.String(m.notice, width)) + "\n")
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "Loading..."
	}

	help := promptStyle.Render("Enter: send • /back: undo • Ctrl+C: quit")
	return fmt.Sprintf("%s\n%s\n%s",
		m.viewport.View(),
		m.textarea.View(),
		help,
	)
}
