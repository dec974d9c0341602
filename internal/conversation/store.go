package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Context is one retrieved passage that backed a response.
type Context struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// Message is one completed query/response exchange.
type Message struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"userId"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Contexts  []Context `json:"contexts,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PageResult is one page of history, newest first.
type PageResult struct {
	Messages   []Message `json:"messages"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	Total      int       `json:"total"`
	TotalPages int       `json:"totalPages"`
}

// Stats summarizes stored history across all users.
type Stats struct {
	Users    int `json:"users"`
	Messages int `json:"messages"`
}

// Store keeps per-user conversation history in memory, bounded to
// maxLength messages per user. The oldest message is dropped when a
// user's history is full.
type Store struct {
	mu        sync.Mutex
	histories map[string][]Message
	maxLength int
	pageSize  int
}

func NewStore(maxLength, pageSize int) *Store {
	return &Store{
		histories: make(map[string][]Message),
		maxLength: maxLength,
		pageSize:  pageSize,
	}
}

// Append records a completed exchange for the user.
func (s *Store) Append(userID, query, response string, contexts []Context) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := Message{
		ID:        uuid.New(),
		UserID:    userID,
		Query:     query,
		Response:  response,
		Contexts:  contexts,
		Timestamp: time.Now(),
	}

	history := append(s.histories[userID], msg)
	if len(history) > s.maxLength {
		history = history[len(history)-s.maxLength:]
	}
	s.histories[userID] = history
	return msg
}

// Page returns the requested page of the user's history, newest first.
// Pages are 1-based; pageSize <= 0 falls back to the configured default.
// Out-of-range pages return an empty slice with the real totals.
func (s *Store) Page(userID string, page, pageSize int) PageResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	history := s.histories[userID]
	total := len(history)
	totalPages := (total + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}

	result := PageResult{
		Messages:   []Message{},
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}

	start := (page - 1) * pageSize
	if start >= total {
		return result
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	// History is stored oldest first; walk it backwards for the page.
	for i := total - 1 - start; i >= total-end; i-- {
		result.Messages = append(result.Messages, history[i])
	}
	return result
}

// RecentWindow returns the user's last n messages in chronological
// order, for prompt assembly.
func (s *Store) RecentWindow(userID string, n int) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.histories[userID]
	if n <= 0 || len(history) == 0 {
		return nil
	}
	if n > len(history) {
		n = len(history)
	}

	window := make([]Message, n)
	copy(window, history[len(history)-n:])
	return window
}

// Clear drops the user's history and reports how many messages went.
func (s *Store) Clear(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.histories[userID])
	delete(s.histories, userID)
	return n
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{Users: len(s.histories)}
	for _, history := range s.histories {
		stats.Messages += len(history)
	}
	return stats
}
