// Package notify forwards meetup session lifecycle events to an operations
// Telegram chat. It is an optional sink on the session update broadcast; the
// core never depends on it.
package notify

import (
	"encoding/json"
	"fmt"
	"log"

	"meetgo/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
)

// UpdateSubscriber provides the session update subscription. The storage
// service implements it.
type UpdateSubscriber interface {
	SubscribeSessionUpdates() *redis.PubSub
}

// Service relays terminal session transitions to a Telegram chat.
type Service struct {
	BotAPI  *tgbotapi.BotAPI
	ChatID  int64
	Updates UpdateSubscriber
}

// NewService creates the notifier. The token must belong to a bot that is a
// member of the target chat.
func NewService(token string, chatID int64, updates UpdateSubscriber) (*Service, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("Ops notifier authorized on account %s", bot.Self.UserName)

	return &Service{BotAPI: bot, ChatID: chatID, Updates: updates}, nil
}

// Run consumes the update stream until the subscription closes. Meant to run
// in its own goroutine.
func (s *Service) Run() {
	pubsub := s.Updates.SubscribeSessionUpdates()
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var update models.SessionUpdate
		if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
			log.Printf("ERROR: Failed to unmarshal session update: %v", err)
			continue
		}

		if !update.Status.IsTerminal() {
			continue
		}

		text := formatUpdate(update)
		if _, err := s.BotAPI.Send(tgbotapi.NewMessage(s.ChatID, text)); err != nil {
			log.Printf("WARNING: Failed to send ops notification for session %s: %v",
				update.SessionID, err)
		}
	}
}

func formatUpdate(update models.SessionUpdate) string {
	switch update.Status {
	case models.StatusCompleted:
		return fmt.Sprintf("Meetup %s completed: users %s and %s verified within %.2f ft",
			update.SessionID, update.RequesterID, update.AddresseeID, deref(update.DistanceFeet))
	case models.StatusFailedProximity:
		return fmt.Sprintf("Meetup %s failed proximity check at %.2f ft (users %s / %s)",
			update.SessionID, deref(update.DistanceFeet), update.RequesterID, update.AddresseeID)
	case models.StatusDenied:
		return fmt.Sprintf("Meetup %s denied (users %s / %s)",
			update.SessionID, update.RequesterID, update.AddresseeID)
	default:
		return fmt.Sprintf("Meetup %s %s (users %s / %s)",
			update.SessionID, update.Status, update.RequesterID, update.AddresseeID)
	}
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
