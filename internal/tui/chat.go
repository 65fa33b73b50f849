package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"chatlink/internal/chat/reconcile"
	"chatlink/internal/chat/session"
	"chatlink/internal/chat/transport"
)

// sessionUpdatedMsg fires whenever the session snapshot changed.
type sessionUpdatedMsg struct{}

// sessionClosedMsg fires when the session's update channel closed.
type sessionClosedMsg struct{}

type chatModel struct {
	sess  *session.Session
	snap  session.Snapshot
	vp    viewport.Model
	input textinput.Model

	width   int
	height  int
	errText string
}

func newChatModel(deps Deps, conversationID string, width, height int) (*chatModel, tea.Cmd) {
	user := session.User{
		ID:       deps.Tokens.UserID(),
		Username: deps.Tokens.Username(),
	}
	if user.Username == "" {
		user.Username = "You"
	}

	sess := session.New(conversationID, user, deps.API, deps.Cache,
		func(ev transport.Events) session.Transport {
			return transport.New(deps.Config.Socket, ev, deps.Log)
		}, deps.Log)
	sess.Start()

	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.CharLimit = 2000
	input.Focus()

	m := &chatModel{
		sess:  sess,
		input: input,
	}
	m.resize(width, height)
	return m, m.waitUpdate()
}

func (m *chatModel) waitUpdate() tea.Cmd {
	updates := m.sess.Updates()
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return sessionClosedMsg{}
		}
		return sessionUpdatedMsg{}
	}
}

func (m *chatModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.vp = viewport.New(width, max(height-5, 3))
	m.input.Width = max(width-6, 20)
	m.refresh()
}

func (m *chatModel) refresh() {
	m.snap = m.sess.Snapshot()
	atBottom := m.vp.AtBottom()
	m.vp.SetContent(renderTimeline(m.snap.Messages, m.width))
	if atBottom {
		m.vp.GotoBottom()
	}
}

func (m *chatModel) update(msg tea.Msg) (*chatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionUpdatedMsg:
		m.refresh()
		if m.snap.State == session.StateAuthExpired {
			return m, func() tea.Msg { return authExpiredMsg{} }
		}
		// New messages pin the view to the latest entry.
		m.vp.GotoBottom()
		return m, m.waitUpdate()

	case sessionClosedMsg:
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			return m, func() tea.Msg { return closeChatMsg{} }

		case tea.KeyEnter:
			text := m.input.Value()
			if strings.TrimSpace(text) == "" {
				return m, nil
			}
			err := m.sess.SendMessage(text)
			switch {
			case err == nil:
				m.input.Reset()
				m.errText = ""
			default:
				m.errText = err.Error()
			}
			m.refresh()
			return m, nil

		case tea.KeyPgUp:
			m.vp.HalfViewUp()
			return m, nil
		case tea.KeyPgDown:
			m.vp.HalfViewDown()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *chatModel) view() string {
	var b strings.Builder

	title := m.snap.ConversationName
	if title == "" {
		title = "Chat"
	}
	b.WriteString(titleStyle.Render(title))
	if banner := stateBanner(m.snap); banner != "" {
		b.WriteString("  " + bannerStyle.Render(banner))
	}
	b.WriteString("\n")

	b.WriteString(m.vp.View() + "\n")

	if m.errText != "" {
		b.WriteString(errorStyle.Render("  "+m.errText) + "\n")
	}
	b.WriteString("  " + m.input.View() + "\n")
	b.WriteString(dimStyle.Render("  enter to send, esc to go back") + "\n")
	return b.String()
}

func (m *chatModel) close() {
	m.sess.Close()
}

func stateBanner(snap session.Snapshot) string {
	switch snap.State {
	case session.StateLoadingDetails, session.StateLoadingMessages:
		return "loading..."
	case session.StateConnecting:
		return "connecting..."
	case session.StateReconnecting:
		return "reconnecting..."
	case session.StateDegraded:
		return "offline (sending disabled)"
	}
	return ""
}

func renderTimeline(msgs []reconcile.Message, width int) string {
	if len(msgs) == 0 {
		return dimStyle.Render("  No messages yet.")
	}

	var b strings.Builder
	for _, msg := range msgs {
		stamp := msg.Timestamp.Local().Format("15:04")
		line := fmt.Sprintf("%s %s  %s",
			dimStyle.Render(stamp),
			senderStyle.Render(msg.DisplayName),
			msg.Content,
		)
		if msg.Origin == reconcile.OriginPending {
			line += pendingStyle.Render("  (sending...)")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
