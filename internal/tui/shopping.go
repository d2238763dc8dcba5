package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"smart-pantry/internal/app"
	"smart-pantry/internal/shopping"
)

// ShoppingActions is the part of the application the shopping view drives.
type ShoppingActions interface {
	Snapshot() app.State
	AddShoppingItem(ctx context.Context, name string) (shopping.Item, error)
	ToggleShoppingItem(ctx context.Context, id string) error
	RemoveShoppingItem(ctx context.Context, id string) error
	Checkout(ctx context.Context) (int, error)
}

// listItem adapts a shopping.Item to bubbles/list.Item
type listItem struct {
	shopping.Item
}

func (i listItem) Title() string       { return i.Name }
func (i listItem) Description() string { return i.Category }
func (i listItem) FilterValue() string { return i.Name }

// itemDelegate renders one item per line.
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}

	box := mutedStyle.Render(boxUnchecked)
	text := it.Name
	if it.Checked {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	line := fmt.Sprintf("%s %s", box, text)
	if it.Category != "" && it.Category != shopping.CategoryManual {
		line += mutedStyle.Render(" · " + it.Category)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

var (
	addBind      = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	toggleBind   = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "check"))
	deleteBind   = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	checkoutBind = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "checkout"))
)

// ShoppingModel is the interactive shopping list. Every change is applied
// through the application immediately, so quitting never loses work.
type ShoppingModel struct {
	ctx     context.Context
	actions ShoppingActions

	list list.Model

	// Inline add
	adding bool
	ti     textinput.Model

	status    string
	statusErr bool
}

// NewShoppingModel builds the view over the current shopping list.
func NewShoppingModel(ctx context.Context, actions ShoppingActions) ShoppingModel {
	l := list.New(nil, itemDelegate{}, 80, 20)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{addBind, toggleBind, deleteBind, checkoutBind}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "What do you need?"
	ti.CharLimit = 200

	m := ShoppingModel{ctx: ctx, actions: actions, list: l, ti: ti}
	m.refresh()
	return m
}

// RunShopping opens the shopping list full screen until the user quits.
func RunShopping(ctx context.Context, actions ShoppingActions) error {
	_, err := tea.NewProgram(NewShoppingModel(ctx, actions), tea.WithAltScreen()).Run()
	return err
}

// refresh reloads the list from the application state.
func (m *ShoppingModel) refresh() {
	items := m.actions.Snapshot().ShoppingList
	li := make([]list.Item, 0, len(items))
	for _, it := range items {
		li = append(li, listItem{Item: it})
	}
	m.list.SetItems(li)

	checked := shopping.CheckedCount(items)
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s",
		titleStyle.Render("Shopping"),
		successStyle.Render("✔"), checked,
		pendingStyle.Render("•"), len(items)-checked,
		accentStyle.Render(progressBar(checked, len(items), 12)),
	)
}

func (m *ShoppingModel) report(msg string, err error) {
	if err != nil {
		m.status, m.statusErr = err.Error(), true
		return
	}
	m.status, m.statusErr = msg, false
}

func (m ShoppingModel) selected() (listItem, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it, ok
}

func (m ShoppingModel) Init() tea.Cmd { return nil }

func (m ShoppingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.list.SetSize(size.Width-4, size.Height-6)
		return m, nil
	}

	// add mode
	if m.adding {
		if x, ok := msg.(tea.KeyMsg); ok {
			switch x.String() {
			case "enter":
				name := strings.TrimSpace(m.ti.Value())
				if name == "" {
					m.report("", errors.New("name cannot be empty"))
					return m, nil
				}
				item, err := m.actions.AddShoppingItem(m.ctx, name)
				m.report("added "+item.Name, err)
				m.refresh()
				m.ti.SetValue("")
				m.ti.Blur()
				m.adding = false
				return m, nil
			case "esc":
				m.adding = false
				m.ti.SetValue("")
				m.ti.Blur()
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}

	// Keys typed into the filter belong to the list.
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	if x, ok := msg.(tea.KeyMsg); ok {
		switch x.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case " ":
			if it, ok := m.selected(); ok {
				m.report("", m.actions.ToggleShoppingItem(m.ctx, it.ID))
				m.refresh()
			}
			return m, nil
		case "d":
			if it, ok := m.selected(); ok {
				m.report("removed "+it.Name, m.actions.RemoveShoppingItem(m.ctx, it.ID))
				m.refresh()
			}
			return m, nil
		case "c":
			n, err := m.actions.Checkout(m.ctx)
			m.report(fmt.Sprintf("moved %d items to the pantry", n), err)
			m.refresh()
			return m, nil
		case "a":
			m.adding = true
			m.status = ""
			m.ti.SetValue("")
			return m, m.ti.Focus()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m ShoppingModel) View() string {
	content := m.list.View()
	if m.adding {
		bar := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
		content += "\n" + bar.Render("Add item\n"+m.ti.View())
	}
	if m.status != "" {
		style := successStyle
		if m.statusErr {
			style = errorStyle
		}
		content += "\n" + style.Render(m.status)
	}
	return panelStyle.Render(content)
}
