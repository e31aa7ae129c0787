package api

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Status tracks process-level state reported by /status.
type Status struct {
	startedAt     time.Time
	storage       string
	priceTape     bool
	lastMessageAt atomic.Int64 // unix ms
	messages      atomic.Int64
}

// NewStatus creates a Status for a process using the given storage driver.
func NewStatus(storage string, priceTape bool) *Status {
	return &Status{startedAt: time.Now(), storage: storage, priceTape: priceTape}
}

// MessageHandled records that a chat message was processed.
func (s *Status) MessageHandled(at time.Time) {
	s.messages.Add(1)
	s.lastMessageAt.Store(at.UnixMilli())
}

// StatusResponse is the JSON body of /status.
type StatusResponse struct {
	Status          string    `json:"status"`
	Uptime          string    `json:"uptime"`
	StartedAt       time.Time `json:"started_at"`
	Storage         string    `json:"storage"`
	PriceTape       bool      `json:"price_tape"`
	MessagesHandled int64     `json:"messages_handled"`
	LastMessageAt   int64     `json:"last_message_at,omitempty"`
}

func (s *Status) handle(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status:          "running",
		Uptime:          time.Since(s.startedAt).Round(time.Second).String(),
		StartedAt:       s.startedAt,
		Storage:         s.storage,
		PriceTape:       s.priceTape,
		MessagesHandled: s.messages.Load(),
		LastMessageAt:   s.lastMessageAt.Load(),
	})
}
