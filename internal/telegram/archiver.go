package telegram

import (
	"context"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"question-exporter/internal/archive"
	"question-exporter/internal/collector"
)

// Archiver long-polls Telegram updates and appends group and channel
// messages into the local archive the collector later scans. All
// transport concerns (login, polling, rate limits) stay in here.
type Archiver struct {
	api   *tgbotapi.BotAPI
	store *archive.Store
}

func NewArchiver(botToken string, store *archive.Store) (*Archiver, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Archiver{api: api, store: store}, nil
}

func (a *Archiver) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := a.api.GetUpdatesChan(u)
	log.Printf("Archiving messages as @%s", a.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			a.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if msg := incomingMessage(update); msg != nil {
				a.archive(ctx, msg)
			}
		}
	}
}

func incomingMessage(update tgbotapi.Update) *tgbotapi.Message {
	if update.Message != nil {
		return update.Message
	}
	// Channel posts arrive on a separate update field.
	return update.ChannelPost
}

func (a *Archiver) archive(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	m := collector.Message{
		ID:          int64(msg.MessageID),
		ChannelID:   msg.Chat.ID,
		ChannelName: chatName(msg.Chat),
		AuthorIsBot: msg.From != nil && msg.From.IsBot,
		Content:     msg.Text,
		CreatedAt:   time.Unix(int64(msg.Date), 0).UTC(),
	}
	if err := a.store.Append(ctx, m); err != nil {
		log.Printf("failed to archive message %d from chat %d: %v", msg.MessageID, msg.Chat.ID, err)
	}
}

func chatName(chat *tgbotapi.Chat) string {
	if chat.Title != "" {
		return chat.Title
	}
	if chat.UserName != "" {
		return chat.UserName
	}
	return chat.FirstName
}
