// Package tui renders the client's three screens (login, conversation
// list and chat view) on top of the session engine. It only ever talks
// to the engine through snapshots and the update channel.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"chatlink/internal/api"
	"chatlink/internal/auth"
	"chatlink/internal/cache"
	"chatlink/internal/config"
)

type screen int

const (
	screenLogin screen = iota
	screenConversations
	screenChat
	screenProfile
)

// Deps is everything the screens need, assembled by the DI layer.
type Deps struct {
	Config *config.Config
	API    *api.Client
	Tokens *auth.Store
	Cache  cache.Repository
	Log    zerolog.Logger
}

// Model is the root bubbletea model; it owns the active screen.
type Model struct {
	deps Deps

	screen  screen
	login   loginModel
	convs   convsModel
	chat    *chatModel
	profile profileModel

	width  int
	height int
}

func New(deps Deps) *Model {
	m := &Model{
		deps:   deps,
		login:  newLoginModel(),
		convs:  newConvsModel(),
		width:  80,
		height: 24,
	}

	// Skip login when a live token survived the last run.
	if deps.Tokens.UserID() != "" && !deps.Tokens.Expired() {
		m.screen = screenConversations
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	if m.screen == screenConversations {
		return m.convs.load(m.deps)
	}
	return m.login.init()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.chat != nil {
			m.chat.resize(msg.Width, msg.Height)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.teardown()
			return m, tea.Quit
		}

	case loginDoneMsg:
		m.screen = screenConversations
		return m, m.convs.load(m.deps)

	case authExpiredMsg:
		// Any screen can bounce back to login on a 401.
		m.deps.Tokens.Clear()
		m.teardown()
		m.screen = screenLogin
		m.login = newLoginModel()
		m.login.errText = "Session expired. Please log in again."
		return m, m.login.init()

	case openChatMsg:
		chat, cmd := newChatModel(m.deps, msg.conversationID, m.width, m.height)
		m.chat = chat
		m.screen = screenChat
		return m, cmd

	case closeChatMsg:
		m.teardown()
		m.screen = screenConversations
		return m, m.convs.load(m.deps)

	case openProfileMsg:
		m.profile = newProfileModel(m.deps)
		m.screen = screenProfile
		return m, nil

	case closeProfileMsg:
		m.screen = screenConversations
		return m, m.convs.load(m.deps)

	case logoutMsg:
		m.deps.Tokens.Clear()
		m.teardown()
		m.screen = screenLogin
		m.login = newLoginModel()
		return m, m.login.init()
	}

	switch m.screen {
	case screenLogin:
		var cmd tea.Cmd
		m.login, cmd = m.login.update(msg, m.deps)
		return m, cmd
	case screenConversations:
		var cmd tea.Cmd
		m.convs, cmd = m.convs.update(msg, m.deps)
		return m, cmd
	case screenProfile:
		var cmd tea.Cmd
		m.profile, cmd = m.profile.update(msg)
		return m, cmd
	default:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.update(msg)
		return m, cmd
	}
}

func (m *Model) View() string {
	switch m.screen {
	case screenLogin:
		return m.login.view()
	case screenConversations:
		return m.convs.view(m.width)
	case screenProfile:
		return m.profile.view()
	default:
		return m.chat.view()
	}
}

// teardown releases the active chat session, if any. Quitting and screen
// switches both land here so the socket is never leaked.
func (m *Model) teardown() {
	if m.chat != nil {
		m.chat.close()
		m.chat = nil
	}
}

// Messages shared between screens.
type (
	loginDoneMsg   struct{}
	authExpiredMsg struct{}
	openChatMsg    struct{ conversationID string }
	closeChatMsg   struct{}
	openProfileMsg struct{}
)
