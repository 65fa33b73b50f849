package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type loginResultMsg struct {
	err error
}

type loginModel struct {
	email    textinput.Model
	password textinput.Model
	focused  int
	busy     bool
	errText  string
}

func newLoginModel() loginModel {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return loginModel{email: email, password: password}
}

func (m loginModel) init() tea.Cmd {
	return textinput.Blink
}

func (m loginModel) update(msg tea.Msg, deps Deps) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyTab, tea.KeyShiftTab:
			m.focused = (m.focused + 1) % 2
			if m.focused == 0 {
				m.email.Focus()
				m.password.Blur()
			} else {
				m.password.Focus()
				m.email.Blur()
			}
			return m, nil

		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			email := strings.TrimSpace(m.email.Value())
			password := m.password.Value()
			if email == "" || password == "" {
				m.errText = "Email and password are required."
				return m, nil
			}
			m.busy = true
			m.errText = ""
			return m, func() tea.Msg {
				_, err := deps.API.Login(context.Background(), email, password)
				return loginResultMsg{err: err}
			}
		}

	case loginResultMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		return m, func() tea.Msg { return loginDoneMsg{} }
	}

	var cmd tea.Cmd
	if m.focused == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m loginModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("chatlink") + "\n\n")
	b.WriteString("  " + m.email.View() + "\n")
	b.WriteString("  " + m.password.View() + "\n\n")

	switch {
	case m.busy:
		b.WriteString(dimStyle.Render("  Signing in..."))
	case m.errText != "":
		b.WriteString(errorStyle.Render("  " + m.errText))
	default:
		b.WriteString(dimStyle.Render("  enter to sign in, tab to switch fields, ctrl+c to quit"))
	}
	b.WriteString("\n")
	return b.String()
}
