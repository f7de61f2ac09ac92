// Package tui provides interactive terminal UI components.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/bookshelf/internal/enrichment/openlibrary"
	"github.com/lepinkainen/bookshelf/internal/errors"
	"github.com/lepinkainen/bookshelf/internal/legacy"
)

const (
	defaultListWidth  = 72
	defaultListHeight = 20
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// SelectionAction represents the user's action in the selection UI.
type SelectionAction int

const (
	// ActionNone indicates no action was taken.
	ActionNone SelectionAction = iota
	// ActionSelected indicates the user selected an item.
	ActionSelected
	// ActionSkipped indicates the user skipped the selection.
	ActionSkipped
	// ActionStopped indicates the user stopped processing entirely.
	ActionStopped
)

// SelectionResult holds the result of a TUI selection.
type SelectionResult struct {
	Action    SelectionAction
	Selection *openlibrary.Work
}

type workItem struct {
	openlibrary.Work
}

func (i workItem) Title() string {
	return fmt.Sprintf("%s (%s)", strings.ToUpper(i.Work.Title), yearLabel(i.FirstPublishYear))
}

func (i workItem) FilterValue() string {
	return i.Work.Title
}

func (i workItem) Description() string {
	return strings.Join(i.AuthorName, ", ")
}

type itemStyles struct {
	normal        lipgloss.Style
	selected      lipgloss.Style
	keyStyle      lipgloss.Style
	titleStyle    lipgloss.Style
	authorStyle   lipgloss.Style
	metadataStyle lipgloss.Style
}

func newItemStyles() itemStyles {
	asciiBorder := lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	container := lipgloss.NewStyle().
		Border(asciiBorder).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Foreground(lipgloss.Color("252"))

	selected := container.Copy().
		BorderForeground(lipgloss.Color("214")).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("237"))

	return itemStyles{
		normal:   container,
		selected: selected,
		keyStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("110")),
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254")),
		authorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("178")),
		metadataStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
	}
}

type workDelegate struct {
	styles itemStyles
}

func newDelegate() workDelegate {
	return workDelegate{styles: newItemStyles()}
}

func (d workDelegate) Height() int                         { return 4 }
func (d workDelegate) Spacing() int                        { return 1 }
func (d workDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d workDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	work, ok := item.(workItem)
	if !ok {
		return
	}

	authors := truncate(work.Description(), m.Width()-4)
	if authors == "" {
		authors = "Unknown author"
	}

	keyLine := d.styles.keyStyle.Render(fmt.Sprintf("[%s]", work.OLID()))
	titleLine := d.styles.titleStyle.Render(truncate(work.Title(), m.Width()-4))
	authorLine := d.styles.authorStyle.Render(authors)
	metadataLine := d.styles.metadataStyle.Render(formatMetadata(work.Work))

	content := lipgloss.JoinVertical(lipgloss.Left, keyLine, titleLine, authorLine, metadataLine)

	container := d.styles.normal
	if idx == m.Index() {
		container = d.styles.selected
	}
	_, _ = fmt.Fprint(w, container.Render(content))
}

type model struct {
	list   list.Model
	header string
	result SelectionResult
}

func newModel(header string, works []openlibrary.Work) *model {
	listItems := make([]list.Item, len(works))
	for i, work := range works {
		listItems[i] = workItem{Work: work}
	}

	l := list.New(listItems, newDelegate(), defaultListWidth, defaultListHeight)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle()

	return &model{
		list:   l,
		header: header,
		result: SelectionResult{Action: ActionNone},
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if selected, ok := m.list.SelectedItem().(workItem); ok {
				work := selected.Work
				m.result = SelectionResult{Action: ActionSelected, Selection: &work}
				return m, tea.Quit
			}
		case "s", "esc":
			m.result = SelectionResult{Action: ActionSkipped}
			return m, tea.Quit
		case "ctrl+c", "q":
			m.result = SelectionResult{Action: ActionStopped}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		width := clamp(defaultListWidth, msg.Width-4, 40)
		height := clamp(defaultListHeight, msg.Height-6, 5)
		m.list.SetSize(width, height)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	header := headerStyle.Render(m.header)
	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		skipButtonStyle.Render(" Skip "),
		lipgloss.NewStyle().Padding(0, 2).Render(""),
		stopButtonStyle.Render(" Stop Processing "),
	)
	help := helpStyle.Render("Up/Down navigate | Enter select | s skip | q stop")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View(), buttons, help)
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	skipButtonStyle = lipgloss.NewStyle().
			MarginTop(1).
			Padding(0, 2).
			Background(lipgloss.Color("178")).
			Foreground(lipgloss.Color("0")).
			Bold(true)

	stopButtonStyle = lipgloss.NewStyle().
			MarginTop(1).
			Padding(0, 2).
			Background(lipgloss.Color("161")).
			Foreground(lipgloss.Color("230")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

// Select presents an interactive selection UI for OpenLibrary works.
func Select(header string, works []openlibrary.Work) (SelectionResult, error) {
	if len(works) == 0 {
		return SelectionResult{Action: ActionSkipped}, nil
	}

	finalModel, err := runProgram(newModel(header, works))
	if err != nil {
		return SelectionResult{}, err
	}

	if typed, ok := finalModel.(*model); ok {
		return typed.result, nil
	}

	return SelectionResult{}, fmt.Errorf("unexpected program result")
}

// WorkPicker asks the user which search result, if any, is the legacy book.
type WorkPicker struct{}

// SelectWork shows the candidates for row. Skipping yields no work; stopping
// yields a StopProcessingError.
func (WorkPicker) SelectWork(row legacy.Row, candidates []openlibrary.Work) (*openlibrary.Work, error) {
	header := fmt.Sprintf("OpenLibrary works for: %s", row.Title)
	if row.Author != "" {
		header += " by " + legacy.ReverseAuthor(row.Author)
	}

	result, err := Select(header, candidates)
	if err != nil {
		return nil, fmt.Errorf("work selection: %w", err)
	}

	switch result.Action {
	case ActionSelected:
		return result.Selection, nil
	case ActionStopped:
		return nil, errors.NewStopProcessingError("stopped at " + row.String())
	default:
		return nil, nil
	}
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	if width <= 0 || len(value) <= width {
		return value
	}
	if width <= 3 {
		return value[:width]
	}
	return value[:width-3] + "..."
}

// formatMetadata renders the first publication year and edition count.
func formatMetadata(work openlibrary.Work) string {
	var parts []string
	if work.FirstPublishYear > 0 {
		parts = append(parts, fmt.Sprintf("first published %d", work.FirstPublishYear))
	}
	switch {
	case work.EditionCount == 1:
		parts = append(parts, "1 edition")
	case work.EditionCount > 1:
		parts = append(parts, fmt.Sprintf("%d editions", work.EditionCount))
	}
	if len(parts) == 0 {
		return "No metadata available"
	}
	return strings.Join(parts, " | ")
}

func yearLabel(year int) string {
	if year <= 0 {
		return "n/a"
	}
	return fmt.Sprint(year)
}

func clamp(defaultValue, available, minimum int) int {
	width := defaultValue
	if available > 0 && available < defaultValue {
		width = available
	}
	if width < minimum {
		width = minimum
	}
	return width
}
