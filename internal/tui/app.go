// Package tui is the interactive history browser: a search box, a result
// list, and a detail pane, refreshed live while Claude Code keeps writing.
package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pcarlton/histx/internal/filter"
	"github.com/pcarlton/histx/internal/logging"
	"github.com/pcarlton/histx/internal/models"
	"github.com/pcarlton/histx/internal/scanner"
	"github.com/pcarlton/histx/internal/search"
	"github.com/pcarlton/histx/internal/watcher"
)

var tuiLog = logging.ForComponent(logging.CompTUI)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))
)

// RebuildFunc reloads the index from disk.
type RebuildFunc func() ([]models.Entry, error)

// Browser owns one interactive session over the index.
type Browser struct {
	entries   []models.Entry
	rebuild   RebuildFunc
	claudeDir string
}

func NewBrowser(entries []models.Entry, rebuild RebuildFunc, claudeDir string) *Browser {
	return &Browser{entries: entries, rebuild: rebuild, claudeDir: claudeDir}
}

// Run blocks until the user quits. A filesystem watcher triggers index
// rebuilds while the browser is open; if watching fails the browser still
// works on the startup snapshot.
func (b *Browser) Run() error {
	m := initialModel(b.entries, b.rebuild)

	w, err := watcher.New(b.claudeDir)
	if err != nil {
		tuiLog.Warn("live_refresh_disabled", slog.String("error", err.Error()))
	} else {
		m.changes = w.Events()
		defer w.Close()
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

type resultItem struct {
	entry models.Entry
}

func (i resultItem) FilterValue() string { return i.entry.Text }

func (i resultItem) Title() string {
	line := strings.ReplaceAll(i.entry.Text, "\n", " ")
	runes := []rune(line)
	if len(runes) > 80 {
		return string(runes[:80]) + "..."
	}
	return line
}

func (i resultItem) Description() string {
	desc := fmt.Sprintf("%s | %s", typeLabel(i.entry.Type), i.entry.Timestamp.Local().Format("2006-01-02 15:04"))
	if i.entry.ProjectPath != "" {
		desc = fmt.Sprintf("%s | %s", desc, scanner.FormatPathWithTilde(i.entry.ProjectPath))
	}
	return desc
}

func typeLabel(t models.EntryType) string {
	if t == models.EntryAgentMessage {
		return "agent"
	}
	return "user"
}

type indexChangedMsg struct{}

type indexRebuiltMsg struct {
	entries []models.Entry
	err     error
}

type model struct {
	searcher *search.Searcher
	rebuild  RebuildFunc
	changes  <-chan struct{}

	input    textinput.Model
	list     list.Model
	viewport viewport.Model

	width  int
	height int
	ready  bool
	status string
}

func initialModel(entries []models.Entry, rebuild RebuildFunc) model {
	input := textinput.New()
	input.Prompt = "search> "
	input.Placeholder = "type to search, project:/type:/since: to filter"
	input.CharLimit = 256
	input.Focus()

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(nil, delegate, 0, 0)
	l.Title = "History"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = titleStyle

	vp := viewport.New(0, 0)

	m := model{
		searcher: search.NewSearcher(entries),
		rebuild:  rebuild,
		input:    input,
		list:     l,
		viewport: vp,
	}
	m.refreshResults()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForChange())
}

// waitForChange bridges watcher tokens into the bubbletea loop.
func (m model) waitForChange() tea.Cmd {
	ch := m.changes
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return indexChangedMsg{}
	}
}

func (m model) rebuildCmd() tea.Cmd {
	rebuild := m.rebuild
	return func() tea.Msg {
		entries, err := rebuild()
		return indexRebuiltMsg{entries: entries, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		listWidth := m.width / 2
		m.list.SetSize(listWidth-2, m.height-5)
		m.viewport.Width = m.width - listWidth - 4
		m.viewport.Height = m.height - 5
		m.input.Width = m.width - len(m.input.Prompt) - 2
		m.updateDetail()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if msg.String() == "esc" && m.input.Value() != "" {
				m.input.SetValue("")
				m.refreshResults()
				return m, nil
			}
			return m, tea.Quit

		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			m.updateDetail()
			return m, cmd

		default:
			var cmd tea.Cmd
			before := m.input.Value()
			m.input, cmd = m.input.Update(msg)
			if m.input.Value() != before {
				m.refreshResults()
			}
			return m, cmd
		}

	case indexChangedMsg:
		m.status = "reindexing..."
		return m, tea.Batch(m.rebuildCmd(), m.waitForChange())

	case indexRebuiltMsg:
		if msg.err != nil {
			tuiLog.Warn("rebuild_failed", slog.String("error", msg.err.Error()))
			m.status = errorStyle.Render("reindex failed: " + msg.err.Error())
			return m, nil
		}
		m.searcher = search.NewSearcher(msg.entries)
		m.status = ""
		m.refreshResults()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// refreshResults reruns the query against the current snapshot. Tokens that
// parse as filter conditions become filters; the rest is the fuzzy query.
func (m *model) refreshResults() {
	query, expr := splitQuery(m.input.Value())
	results := m.searcher.Search(query, expr, 200)

	items := make([]list.Item, 0, len(results))
	for _, r := range results {
		items = append(items, resultItem{entry: r.Entry})
	}
	m.list.SetItems(items)
	m.list.ResetSelected()
	m.updateDetail()
}

// splitQuery pulls filter conditions out of the raw input, leaving the
// free-text part as the fuzzy query. Malformed conditions are treated as
// plain text rather than errors; the TUI has nowhere useful to put them.
func splitQuery(raw string) (string, *filter.Expr) {
	var textParts, filterParts []string
	for _, tok := range strings.Fields(raw) {
		name, _, found := strings.Cut(tok, ":")
		if found {
			switch strings.ToLower(name) {
			case "project", "type", "since":
				filterParts = append(filterParts, tok)
				continue
			}
		}
		textParts = append(textParts, tok)
	}

	expr, err := filter.Parse(strings.Join(filterParts, " "))
	if err != nil {
		return raw, nil
	}
	return strings.Join(textParts, " "), expr
}

func (m *model) updateDetail() {
	item, ok := m.list.SelectedItem().(resultItem)
	if !ok {
		m.viewport.SetContent("")
		return
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(typeLabel(item.entry.Type)))
	b.WriteString("  " + item.entry.Timestamp.Local().Format("2006-01-02 15:04:05"))
	if item.entry.ProjectPath != "" {
		b.WriteString("\n" + scanner.FormatPathWithTilde(item.entry.ProjectPath))
	}
	if item.entry.SessionID != "" {
		b.WriteString("\nsession " + item.entry.SessionID)
	}
	b.WriteString("\n\n")
	b.WriteString(item.entry.Text)
	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
}

func (m model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := m.input.View()
	if m.status != "" {
		header += "  " + m.status
	}

	panes := lipgloss.JoinHorizontal(
		lipgloss.Top,
		paneStyle.Render(m.list.View()),
		paneStyle.Render(m.viewport.View()),
	)

	help := helpStyle.Render("↑/↓ select · esc clear · ctrl+c quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, panes, help)
}
