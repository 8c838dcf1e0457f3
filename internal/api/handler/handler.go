package handler

import (
	"meetgo/backend/internal/meetup"

	"github.com/redis/go-redis/v9"
)

// UpdateSubscriber provides the Redis subscription feeding the websocket
// push channel. The storage service implements it.
type UpdateSubscriber interface {
	SubscribeSessionUpdates() *redis.PubSub
}

// Handler holds the meetup manager and the update subscription source.
type Handler struct {
	Manager *meetup.Manager
	Updates UpdateSubscriber
}

func NewHandler(manager *meetup.Manager, updates UpdateSubscriber) *Handler {
	return &Handler{Manager: manager, Updates: updates}
}
