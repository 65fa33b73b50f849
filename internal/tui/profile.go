package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// logoutMsg asks the root model to clear tokens and return to login.
type logoutMsg struct{}

// closeProfileMsg returns to the conversation list.
type closeProfileMsg struct{}

type profileModel struct {
	userID   string
	username string
}

func newProfileModel(deps Deps) profileModel {
	return profileModel{
		userID:   deps.Tokens.UserID(),
		username: deps.Tokens.Username(),
	}
}

func (m profileModel) update(msg tea.Msg) (profileModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			return m, func() tea.Msg { return logoutMsg{} }
		case tea.KeyEsc:
			return m, func() tea.Msg { return closeProfileMsg{} }
		}
		if key.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m profileModel) view() string {
	return fmt.Sprintf("%s\n\n  %s %s\n  %s %s\n\n%s\n%s\n",
		titleStyle.Render("Profile"),
		dimStyle.Render("User ID: "), orNA(m.userID),
		dimStyle.Render("Username:"), orNA(m.username),
		errorStyle.Render("  enter to clear tokens and log out"),
		dimStyle.Render("  esc to go back, q to quit"),
	)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
