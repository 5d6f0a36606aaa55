package notification

import (
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("notification not found")

type Type string

const (
	TypeOrderPlaced     Type = "order_placed"
	TypePaymentReceived Type = "payment_received"
	TypeOrderConfirmed  Type = "order_confirmed"
	TypeOrderShipped    Type = "order_shipped"
	TypeOrderDelivered  Type = "order_delivered"
	TypeOrderCancelled  Type = "order_cancelled"
)

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      Type      `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Service keeps per-user notification lists in memory. It is an explicit
// dependency constructed once at startup and shared by reference; the mutex
// makes it safe under concurrent request handling. A restart drops all
// notifications — clients fall back to polling the underlying entities.
type Service struct {
	mu     sync.Mutex
	nextID int64
	byUser map[int64][]Notification
}

func NewService() *Service {
	return &Service{byUser: make(map[int64][]Notification)}
}

func (s *Service) push(userID int64, typ Type, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.byUser[userID] = append(s.byUser[userID], Notification{
		ID:        s.nextID,
		UserID:    userID,
		Type:      typ,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ListByUser returns the user's notifications, newest first.
func (s *Service) ListByUser(userID int64) []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.byUser[userID]
	out := make([]Notification, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
	}
	return out
}

func (s *Service) MarkRead(userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.byUser[userID]
	for i := range list {
		if list[i].ID == id {
			list[i].Read = true
			return nil
		}
	}
	return ErrNotFound
}

func (s *Service) MarkAllRead(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.byUser[userID]
	for i := range list {
		list[i].Read = true
	}
}

func (s *Service) Delete(userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.byUser[userID]
	for i := range list {
		if list[i].ID == id {
			s.byUser[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
