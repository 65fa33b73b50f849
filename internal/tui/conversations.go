package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"chatlink/internal/api"
)

type convItem struct {
	id     string
	name   string
	desc   string
	cached bool
}

type convsLoadedMsg struct {
	items   []convItem
	offline bool
	err     error
}

type convsModel struct {
	items   []convItem
	cursor  int
	busy    bool
	offline bool
	errText string
}

func newConvsModel() convsModel {
	return convsModel{busy: true}
}

// load fetches the conversation list, falling back to the local cache
// when the backend is unreachable.
func (m convsModel) load(deps Deps) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		convs, err := deps.API.Conversations(ctx, deps.Tokens.UserID())
		if errors.Is(err, api.ErrUnauthorized) {
			return authExpiredMsg{}
		}
		if err != nil {
			cached, cacheErr := deps.Cache.Conversations(ctx)
			if cacheErr != nil {
				return convsLoadedMsg{err: err}
			}
			items := make([]convItem, 0, len(cached))
			for _, c := range cached {
				items = append(items, convItem{id: c.ID, name: c.Name, desc: c.Description, cached: true})
			}
			return convsLoadedMsg{items: items, offline: true}
		}

		items := make([]convItem, 0, len(convs))
		for _, c := range convs {
			id := c.ID
			if id == "" {
				id = c.ConversationID
			}
			items = append(items, convItem{id: id, name: c.Name, desc: c.Description})
		}
		return convsLoadedMsg{items: items}
	}
}

func (m convsModel) update(msg tea.Msg, deps Deps) (convsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case convsLoadedMsg:
		m.busy = false
		m.offline = msg.offline
		if msg.err != nil {
			m.errText = "Could not load conversations."
			return m, nil
		}
		m.errText = ""
		m.items = msg.items
		if m.cursor >= len(m.items) {
			m.cursor = 0
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter":
			if m.busy || len(m.items) == 0 {
				return m, nil
			}
			id := m.items[m.cursor].id
			return m, func() tea.Msg { return openChatMsg{conversationID: id} }
		case "x":
			// Evict the local copy; the server list repopulates it on the
			// next online load.
			if m.busy || len(m.items) == 0 {
				return m, nil
			}
			id := m.items[m.cursor].id
			return m, func() tea.Msg {
				if err := deps.Cache.DeleteConversation(context.Background(), id); err != nil {
					deps.Log.Warn().Err(err).Str("conversation_id", id).Msg("failed to evict conversation")
				}
				return m.load(deps)()
			}
		case "p":
			return m, func() tea.Msg { return openProfileMsg{} }
		case "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m convsModel) view(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Conversations") + "\n")
	if m.offline {
		b.WriteString(bannerStyle.Render("  offline, showing cached conversations") + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.busy:
		b.WriteString(dimStyle.Render("  Loading..."))
	case m.errText != "":
		b.WriteString(errorStyle.Render("  " + m.errText))
	case len(m.items) == 0:
		b.WriteString(dimStyle.Render("  No conversations yet."))
	default:
		for i, item := range m.items {
			line := fmt.Sprintf("  %s", item.name)
			if item.desc != "" {
				line += dimStyle.Render("  " + item.desc)
			}
			if i == m.cursor {
				line = selectedStyle.Render(">") + line[1:]
			}
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n" + dimStyle.Render("  enter to open, j/k to move, x to evict cached copy, p for profile, q to quit") + "\n")
	return b.String()
}
