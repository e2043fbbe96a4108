package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/billmal071/olsearch/internal/db"
	"github.com/billmal071/olsearch/internal/openlibrary"
)

// HistoryChoice is a past search picked for rerunning
type HistoryChoice struct {
	History *db.SearchHistory
	Refresh bool // skip the response cache
}

type historyItem struct {
	history *db.SearchHistory
	now     time.Time
}

func (h historyItem) Title() string       { return h.history.Label() }
func (h historyItem) Description() string { return DescribeHistory(h.history, h.now) }
func (h historyItem) FilterValue() string { return h.history.Label() + " " + h.history.Filters.String() }

// DescribeHistory summarizes where a past search went, which page it asked
// for, what came back and when
func DescribeHistory(h *db.SearchHistory, now time.Time) string {
	resource := h.Filters.Resource
	if resource == "" {
		resource = openlibrary.DefaultResource
	}

	parts := []string{resource, h.Filters.Pagination(), resultCount(h.ResultCount)}
	extra := h.Filters
	extra.Resource = ""
	if h.Query == "" {
		// already in the label
		extra.Title, extra.Author = "", ""
	}
	if filters := extra.String(); filters != "" {
		parts = append(parts, filters)
	}
	parts = append(parts, humanize.RelTime(h.CreatedAt, now, "ago", "from now"))

	return strings.Join(parts, " | ")
}

func resultCount(n int) string {
	switch n {
	case 0:
		return "no results"
	case 1:
		return "1 result"
	}
	return humanize.Comma(int64(n)) + " results"
}

type historyDelegate struct{}

func (d historyDelegate) Height() int                             { return 2 }
func (d historyDelegate) Spacing() int                            { return 1 }
func (d historyDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d historyDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	h, ok := item.(historyItem)
	if !ok {
		return
	}
	renderRow(w, index == m.Index(), index, Truncate(h.Title(), 70), h.Description())
}

// HistorySelectorModel picks a past search. enter reruns it, f reruns it
// without the cache.
type HistorySelectorModel struct {
	list      list.Model
	choice    *HistoryChoice
	cancelled bool
}

// NewHistorySelector lists history newest first, as given
func NewHistorySelector(history []*db.SearchHistory) HistorySelectorModel {
	now := time.Now()
	items := make([]list.Item, len(history))
	for i, h := range history {
		items[i] = historyItem{history: h, now: now}
	}

	l := list.New(items, historyDelegate{}, 90, 20)
	l.Title = "Search History"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.Styles.Title = TitleStyle

	return HistorySelectorModel{list: l}
}

func (m HistorySelectorModel) Init() tea.Cmd {
	return nil
}

func (m HistorySelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			return m, tea.Quit
		}
		// While typing a filter every other key belongs to the list
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q":
			m.cancelled = true
			return m, tea.Quit
		case "esc":
			if m.list.FilterState() == list.Unfiltered {
				m.cancelled = true
				return m, tea.Quit
			}
		case "enter", "f":
			if item, ok := m.list.SelectedItem().(historyItem); ok {
				m.choice = &HistoryChoice{History: item.history, Refresh: msg.String() == "f"}
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m HistorySelectorModel) View() string {
	if m.choice != nil {
		verb := "Rerunning"
		if m.choice.Refresh {
			verb = "Refreshing"
		}
		return SuccessStyle.Render(fmt.Sprintf("\n  ✓ %s: %s\n", verb, m.choice.History.Label()))
	}
	if m.cancelled {
		return DimStyle.Render("\n  Cancelled.\n")
	}

	help := HelpStyle.Render("  ↑/↓: navigate • enter: rerun • f: rerun without cache • /: filter • q: cancel")
	return "\n" + m.list.View() + "\n" + help
}

// Choice returns the picked search, or nil if the user cancelled
func (m HistorySelectorModel) Choice() *HistoryChoice {
	return m.choice
}

// RunHistorySelector displays the history and returns the picked search
func RunHistorySelector(history []*db.SearchHistory) (*HistoryChoice, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("no search history available")
	}

	finalModel, err := tea.NewProgram(NewHistorySelector(history)).Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(HistorySelectorModel).Choice(), nil
}
