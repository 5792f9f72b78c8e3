// Package tui is the interactive shopping screen: one category at a time,
// toggling items into the cart and moving finished trips to the pantry.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/grocer/internal/liststore"
	"github.com/idilsaglam/grocer/internal/ui"
)

// listItem adapts a grocery item to bubbles/list.Item
type listItem struct {
	Name string
	Done bool
}

func (i listItem) Title() string       { return i.Name }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.Name }

// single-line delegate
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)
	box := mutedStyle.Render(boxUnchecked)
	text := it.Name
	if it.Done {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+box+" "+text)
}

type loadedMsg struct{ err error }

type screen int

const (
	screenList screen = iota
	screenPantry
)

// Model is the bubbletea model over a list store.
type Model struct {
	ctx   context.Context
	store *liststore.Store

	loaded bool
	cat    int // index of the category on screen
	screen screen

	list list.Model

	adding bool
	ti     textinput.Model

	confirming bool   // waiting for y/n before a refresh
	status     string // one-line message under the list

	width, height int
}

// New builds the model. The store is loaded by the model's Init command.
func New(ctx context.Context, s *liststore.Store) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowTitle(true)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")

	bindings := []key.Binding{
		key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "in cart")),
		key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "category")),
		key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "finish trip")),
		key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pantry")),
	}
	l.AdditionalShortHelpKeys = func() []key.Binding { return bindings[:3] }
	l.AdditionalFullHelpKeys = func() []key.Binding { return bindings }

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "New item..."
	ti.CharLimit = 200

	return Model{ctx: ctx, store: s, list: l, ti: ti}
}

// Run starts the program in the alternate screen and blocks until the user quits.
func Run(ctx context.Context, s *liststore.Store) error {
	p := tea.NewProgram(New(ctx, s), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.store.Load(m.ctx)}
	}
}

// Loaded reports whether the load command has completed.
func (m Model) Loaded() bool { return m.loaded }

// Category returns the name of the category on screen.
func (m Model) Category() string {
	names := m.store.List().Names()
	if m.cat < 0 || m.cat >= len(names) {
		return ""
	}
	return names[m.cat]
}

// Status returns the message shown under the list.
func (m Model) Status() string { return m.status }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loaded = true
		if msg.err != nil {
			m.status = errorStyle.Render("could not read saved list, showing defaults")
		}
		cmd := m.sync()
		return m, cmd
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil
	}

	if m.adding {
		return m.updateAdding(msg)
	}

	km, isKey := msg.(tea.KeyMsg)
	if !isKey {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	if km.String() == "ctrl+c" {
		return m, tea.Quit
	}
	// nothing to act on until the saved list is in
	if !m.loaded {
		if km.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}
	if m.confirming {
		return m.updateConfirm(km)
	}
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	if m.screen == screenPantry {
		switch km.String() {
		case "p", "esc":
			m.screen = screenList
		case "q":
			return m, tea.Quit
		}
		return m, nil
	}

	// esc clears an applied filter before it quits
	if km.String() == "esc" && m.list.FilterState() == list.FilterApplied {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch km.String() {
	case "q", "esc":
		return m, tea.Quit
	case "tab":
		cmd := m.switchCategory(1)
		return m, cmd
	case "shift+tab":
		cmd := m.switchCategory(-1)
		return m, cmd
	case "p":
		m.screen = screenPantry
		return m, nil
	case " ", "enter":
		it, ok := m.list.SelectedItem().(listItem)
		if !ok {
			return m, nil
		}
		if err := m.store.CompleteItem(m.Category(), it.Name); err != nil {
			m.status = errorStyle.Render(err.Error())
			return m, nil
		}
		m.status = ""
		if liststore.Summarize(m.store.List()).AllComplete() {
			m.status = successStyle.Render("Everything is in the cart! Press r to finish the trip.")
		}
		cmd := m.sync()
		return m, cmd
	case "d":
		it, ok := m.list.SelectedItem().(listItem)
		if !ok {
			return m, nil
		}
		if err := m.store.RemoveItem(m.Category(), it.Name); err != nil {
			m.status = errorStyle.Render(err.Error())
			return m, nil
		}
		m.status = mutedStyle.Render("removed " + it.Name)
		cmd := m.sync()
		return m, cmd
	case "a":
		m.adding = true
		m.status = ""
		m.ti.SetValue("")
		cmd := m.ti.Focus()
		return m, cmd
	case "r":
		sum := liststore.Summarize(m.store.List())
		if sum.Complete == 0 {
			m.status = mutedStyle.Render("nothing in the cart yet")
			return m, nil
		}
		m.confirming = true
		if sum.AllComplete() {
			m.status = successStyle.Render("Congratulations, you got everything! Move it all to the pantry? (y/n)")
		} else {
			m.status = pendingStyle.Render(fmt.Sprintf("Move %d items to the pantry? %d still to get. (y/n)", sum.Complete, sum.Remaining))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdding(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			name := strings.TrimSpace(m.ti.Value())
			if name == "" {
				m.status = errorStyle.Render("name cannot be empty")
				return m, nil
			}
			if err := m.store.AddItem(m.Category(), name); err != nil {
				m.status = errorStyle.Render(err.Error())
				return m, nil
			}
			m.stopAdding()
			m.status = mutedStyle.Render("added " + name)
			cmd := m.sync()
			return m, cmd
		case "esc":
			m.stopAdding()
			m.status = ""
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *Model) stopAdding() {
	m.adding = false
	m.ti.SetValue("")
	m.ti.Blur()
}

func (m Model) updateConfirm(km tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirming = false
	switch km.String() {
	case "y", "Y", "enter":
		if err := m.store.RefreshList(); err != nil {
			m.status = errorStyle.Render(err.Error())
			return m, nil
		}
		m.status = successStyle.Render("trip finished, items moved to the pantry")
		cmd := m.sync()
		return m, cmd
	}
	m.status = ""
	return m, nil
}

func (m *Model) switchCategory(delta int) tea.Cmd {
	n := len(m.store.List())
	if n == 0 {
		return nil
	}
	m.cat = ((m.cat+delta)%n + n) % n
	m.status = ""
	m.list.ResetSelected()
	return m.sync()
}

// sync rebuilds the visible list from the store.
func (m *Model) sync() tea.Cmd {
	l := m.store.List()
	if len(l) == 0 {
		m.cat = 0
		m.list.Title = titleStyle.Render("No categories")
		return m.list.SetItems(nil)
	}
	if m.cat >= len(l) {
		m.cat = len(l) - 1
	}
	c := l[m.cat]
	items := make([]list.Item, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, listItem{Name: it.Name, Done: it.Complete})
	}

	sum := liststore.Summarize(l)
	cs := sum.Categories[m.cat]
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render(c.Name),
		successStyle.Render("✔"), cs.Total-cs.Remaining,
		pendingStyle.Render("•"), cs.Remaining,
		accentStyle.Render("Left"), sum.Remaining,
	)

	idx := m.list.Index()
	cmd := m.list.SetItems(items)
	if idx >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
	return cmd
}

func (m Model) tabs() string {
	sum := liststore.Summarize(m.store.List())
	parts := make([]string, 0, len(sum.Categories))
	for i, cs := range sum.Categories {
		label := cs.Name
		if cs.Done() {
			label += " ✅"
		} else if !cs.Empty() {
			label += fmt.Sprintf(" (%d)", cs.Remaining)
		}
		st := categoryStyle(cs.Name)
		if i == m.cat {
			st = st.Bold(true).Underline(true)
		} else {
			st = st.Faint(true)
		}
		parts = append(parts, st.Render(label))
	}
	bar := mutedStyle.Render(ui.ProgressBar(sum.Complete, sum.Total, 24))
	left := fmt.Sprintf("%d items left", sum.Remaining)
	if sum.AllComplete() {
		left = "all done"
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...) + "\n" + bar + "  " + mutedStyle.Render(left)
}

func (m Model) pantryView() string {
	pantry := m.store.Pantry()
	lines := []string{titleStyle.Render("Pantry") + "  " + mutedStyle.Render(fmt.Sprintf("%d bought", len(pantry))), ""}
	if len(pantry) == 0 {
		lines = append(lines, mutedStyle.Render("nothing bought yet"))
	}
	for _, name := range pantry {
		lines = append(lines, successStyle.Render(boxChecked)+" "+name)
	}
	lines = append(lines, "", helpStyle.Render("p back • q quit"))
	return strings.Join(lines, "\n")
}

func (m Model) View() string {
	if !m.loaded {
		return panelString(mutedStyle.Render("Loading your list..."))
	}
	if m.screen == screenPantry {
		return panelString(m.pantryView())
	}

	w, h := m.size()
	listHeight := h - 6
	if m.adding {
		listHeight -= 3
	}
	m.list.SetSize(w-4, listHeight)

	content := m.tabs() + "\n\n" + m.list.View()
	if m.adding {
		bar := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
		content += "\n" + bar.Render("Add to "+m.Category()+"\n"+m.ti.View())
	}
	if m.status != "" {
		content += "\n" + m.status
	}
	return panelString(content)
}

func (m Model) size() (int, int) {
	if m.width > 0 && m.height > 0 {
		return m.width, m.height
	}
	w, h := 80, 24
	if tw, th, err := termSize(); err == nil && tw > 0 && th > 0 {
		w, h = tw, th
	}
	return w, h
}
