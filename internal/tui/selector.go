package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/billmal071/olsearch/internal/openlibrary"
)

// LoadMoreFunc fetches the next page of search results
type LoadMoreFunc func() ([]openlibrary.Doc, error)

// loadMoreMsg is sent when more results are loaded
type loadMoreMsg struct {
	docs []openlibrary.Doc
	err  error
}

// DocItem wraps a Doc for the list component
type DocItem struct {
	Doc openlibrary.Doc
}

func (d DocItem) Title() string { return d.Doc.Title }

func (d DocItem) Description() string {
	var parts []string

	if authors := d.Doc.AuthorList(); authors != "" {
		parts = append(parts, authors)
	}
	if d.Doc.FirstPublishYear != 0 {
		parts = append(parts, strconv.Itoa(d.Doc.FirstPublishYear))
	}
	if d.Doc.EditionCount != 0 {
		parts = append(parts, fmt.Sprintf("%d editions", d.Doc.EditionCount))
	}
	if len(d.Doc.Languages) > 0 {
		parts = append(parts, strings.Join(d.Doc.Languages, ","))
	}

	if len(parts) == 0 {
		return "No metadata available"
	}
	return strings.Join(parts, " | ")
}

func (d DocItem) FilterValue() string { return d.Doc.Title }

// DocDelegate handles rendering of doc items
type DocDelegate struct{}

func (d DocDelegate) Height() int                             { return 3 }
func (d DocDelegate) Spacing() int                            { return 0 }
func (d DocDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d DocDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	doc, ok := item.(DocItem)
	if !ok {
		return
	}

	title := Truncate(doc.Doc.Title, 60)
	if title == "" {
		title = "(untitled)"
	}
	renderRow(w, index == m.Index(), index, title, doc.Description(), KeyStyle.Render("      "+doc.Doc.Key))
}

// SelectorModel is the Bubble Tea model for picking a search result
type SelectorModel struct {
	list          list.Model
	selected      *openlibrary.Doc
	quitting      bool
	err           error
	loadMore      LoadMoreFunc
	loading       bool
	seenKeys      map[string]bool
	noMoreResults bool
}

// NewSelector creates a new result selector TUI
func NewSelector(docs []openlibrary.Doc, title string) SelectorModel {
	return NewSelectorWithLoadMore(docs, title, nil)
}

// NewSelectorWithLoadMore creates a new result selector TUI with load more support
func NewSelectorWithLoadMore(docs []openlibrary.Doc, title string, loadMore LoadMoreFunc) SelectorModel {
	items := make([]list.Item, len(docs))
	seenKeys := make(map[string]bool)
	for i, doc := range docs {
		items[i] = DocItem{Doc: doc}
		seenKeys[doc.Key] = true
	}

	l := list.New(items, DocDelegate{}, 70, 4+len(docs)*3)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)
	l.Styles.Title = TitleStyle

	return SelectorModel{
		list:     l,
		loadMore: loadMore,
		seenKeys: seenKeys,
	}
}

func (m SelectorModel) Init() tea.Cmd {
	return nil
}

func (m SelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(DocItem); ok {
				doc := item.Doc
				m.selected = &doc
			}
			return m, tea.Quit
		case "m", "M":
			if m.loadMore != nil && !m.noMoreResults {
				m.loading = true
				return m, m.doLoadMore()
			}
		}
	case loadMoreMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.noMoreResults = true
			return m, nil
		}
		newItems := make([]list.Item, 0, len(msg.docs))
		for _, doc := range msg.docs {
			if !m.seenKeys[doc.Key] {
				m.seenKeys[doc.Key] = true
				newItems = append(newItems, DocItem{Doc: doc})
			}
		}
		if len(newItems) == 0 {
			m.noMoreResults = true
			return m, nil
		}
		allItems := append(m.list.Items(), newItems...)
		m.list.SetItems(allItems)
		m.list.SetHeight(4 + len(allItems)*3)
		return m, nil
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m SelectorModel) doLoadMore() tea.Cmd {
	return func() tea.Msg {
		docs, err := m.loadMore()
		return loadMoreMsg{docs: docs, err: err}
	}
}

func (m SelectorModel) View() string {
	if m.selected != nil {
		return SuccessStyle.Render(fmt.Sprintf("\n  ✓ Selected: %s\n", m.selected.Title))
	}

	if m.quitting {
		return DimStyle.Render("\n  Cancelled.\n")
	}

	if m.loading {
		return "\n" + m.list.View() + "\n" + WarningStyle.Render("  Loading more results...")
	}

	helpParts := []string{"↑/↓: navigate", "enter: select"}
	if m.loadMore != nil && !m.noMoreResults {
		helpParts = append(helpParts, "m: more results")
	}
	helpParts = append(helpParts, "q/esc: cancel")
	help := HelpStyle.Render("  " + strings.Join(helpParts, " • "))

	view := "\n" + m.list.View() + "\n" + help
	if m.err != nil {
		view += "\n" + ErrorStyle.Render(fmt.Sprintf("  Could not load more: %s", m.err.Error()))
	}
	return view
}

// Selected returns the selected doc, or nil if the user cancelled
func (m SelectorModel) Selected() *openlibrary.Doc {
	return m.selected
}

// Items returns the number of results currently listed
func (m SelectorModel) Items() int {
	return len(m.list.Items())
}

// RunSelectorWithLoadMore displays the TUI with load more support and returns the selected doc
func RunSelectorWithLoadMore(docs []openlibrary.Doc, loadMore LoadMoreFunc) (*openlibrary.Doc, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no results to select from")
	}

	model := NewSelectorWithLoadMore(docs, "Select a book", loadMore)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	return finalModel.(SelectorModel).Selected(), nil
}
