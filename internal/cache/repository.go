// Package cache is the local relational store for offline display. All
// operations are best-effort from the session's perspective; callers log
// failures and move on.
package cache

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chatlink/internal/dbsqlite"
)

type Repository interface {
	UpsertConversation(ctx context.Context, conv *dbsqlite.Conversation) error
	UpsertMessages(ctx context.Context, msgs []dbsqlite.Message) error
	MessagesByConversation(ctx context.Context, conversationID string) ([]dbsqlite.Message, error)
	ConversationByID(ctx context.Context, conversationID string) (*dbsqlite.Conversation, error)
	Conversations(ctx context.Context) ([]dbsqlite.Conversation, error)
	DeleteConversation(ctx context.Context, conversationID string) error
}

type repo struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repo{db: db}
}

func (r *repo) UpsertConversation(ctx context.Context, conv *dbsqlite.Conversation) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "updated_at"}),
	}).Create(conv).Error
}

// UpsertMessages writes a batch of message rows keyed by id and bumps the
// owning conversation's updated_at, so the conversation list sorts by
// recent activity.
func (r *repo) UpsertMessages(ctx context.Context, msgs []dbsqlite.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "sent_from_server"}),
	}).Create(&msgs).Error
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(&dbsqlite.Conversation{}).
		Where("id = ?", msgs[0].ConversationID).
		Update("updated_at", time.Now().UTC()).Error
}

func (r *repo) MessagesByConversation(ctx context.Context, conversationID string) ([]dbsqlite.Message, error) {
	var msgs []dbsqlite.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sent_from_client").
		Find(&msgs).Error
	return msgs, err
}

func (r *repo) ConversationByID(ctx context.Context, conversationID string) (*dbsqlite.Conversation, error) {
	var conv dbsqlite.Conversation
	err := r.db.WithContext(ctx).First(&conv, "id = ?", conversationID).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *repo) Conversations(ctx context.Context) ([]dbsqlite.Conversation, error) {
	var convs []dbsqlite.Conversation
	err := r.db.WithContext(ctx).Order("updated_at desc").Find(&convs).Error
	return convs, err
}

func (r *repo) DeleteConversation(ctx context.Context, conversationID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", conversationID).Delete(&dbsqlite.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&dbsqlite.Conversation{}, "id = ?", conversationID).Error
	})
}
