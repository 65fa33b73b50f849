package dbsqlite

import (
	"time"
)

// User mirrors the account rows the backend hands out; only the viewing
// user is ever stored locally.
type User struct {
	ID        string `gorm:"primaryKey;size:36"`
	Email     string `gorm:"uniqueIndex;size:255"`
	Username  string `gorm:"uniqueIndex;size:64"`
	Role      string `gorm:"size:16"`
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Conversation struct {
	ID          string `gorm:"primaryKey;size:36"`
	OwnerID     string `gorm:"index;size:36"`
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Message is a cached chat message. IDs are assigned by whichever side
// created the message first and are the upsert key across all sources.
type Message struct {
	ID             string `gorm:"primaryKey;size:36"`
	ConversationID string `gorm:"index;size:36"`
	SenderID       string `gorm:"index;size:36"`
	Content        string `gorm:"type:text"`
	SentFromClient time.Time
	SentFromServer time.Time
}
