package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/ghorbit/pkg/github"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// UserSelection holds the result of the user selection.
type UserSelection struct {
	User *github.User
}

// UserListModel is the bubbletea model for interactive user selection
// from search results.
type UserListModel struct {
	Query    string
	Users    []github.User
	Cursor   int
	Selected *UserSelection
	Height   int
	Offset   int
}

// NewUserListModel creates a new user list model.
func NewUserListModel(query string, users []github.User) UserListModel {
	return UserListModel{
		Query:  query,
		Users:  users,
		Cursor: 0,
		Height: 15,
		Offset: 0,
	}
}

func (m UserListModel) Init() tea.Cmd {
	return nil
}

func (m UserListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Users)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			user := m.Users[m.Cursor]
			m.Selected = &UserSelection{User: &user}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m UserListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Results for %q", m.Query)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Users) {
		end = len(m.Users)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		u := m.Users[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		kind := u.Type
		if kind == "" {
			kind = "User"
		}

		rows = append(rows, []string{cursor, u.Login, kind, u.HTMLURL})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Login", "Type", "Profile").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Users) {
				return lipgloss.NewStyle()
			}
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if col == 3 {
				base = base.Foreground(colorDim)
			}
			if isCurrent {
				if col != 3 {
					return base.Foreground(colorCyan).Bold(true)
				}
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Users))))

	return b.String()
}

// selectUser runs the interactive picker and returns the chosen user,
// or nil when the picker was dismissed.
func selectUser(query string, users []github.User) (*github.User, error) {
	model := NewUserListModel(query, users)
	p := tea.NewProgram(model)
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("run picker: %w", err)
	}
	if m, ok := final.(UserListModel); ok && m.Selected != nil {
		return m.Selected.User, nil
	}
	return nil, nil
}
