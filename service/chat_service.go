package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"apparel-designer/models"
	"apparel-designer/repository"
)

// ChatFallbackMessage is appended in place of a reply when the model fails
const ChatFallbackMessage = "Sorry, I'm having trouble processing your request right now. Please try again later."

var (
	// ErrEmptyMessage is returned for blank chat input
	ErrEmptyMessage = errors.New("message is empty")
	// ErrBusy is returned while a previous message of the session is being answered
	ErrBusy = errors.New("a message is already being processed")
	// ErrConfirmationRequired is returned when clearing without confirmation
	ErrConfirmationRequired = errors.New("clearing the chat requires confirmation")
)

// SessionGuard runs fn only while the session exists, excluding its deletion
type SessionGuard interface {
	WithSession(ctx context.Context, id string, fn func() error) error
}

type unguarded struct{}

func (unguarded) WithSession(_ context.Context, _ string, fn func() error) error {
	return fn()
}

// ChatService runs the design helper conversation of each session
type ChatService struct {
	repo      *repository.ChatRepository
	completer Completer
	sessions  SessionGuard
	timeout   time.Duration
	now       func() time.Time
	logger    *zap.Logger

	mu   sync.Mutex
	busy map[string]bool
}

// NewChatService creates a new ChatService. Log writes go through sessions
// so a deleted session's log is never recreated; nil skips that check.
func NewChatService(repo *repository.ChatRepository, completer Completer, sessions SessionGuard, timeout time.Duration, logger *zap.Logger) *ChatService {
	if completer == nil {
		completer = OfflineCompleter{}
	}
	if sessions == nil {
		sessions = unguarded{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		repo:      repo,
		completer: completer,
		sessions:  sessions,
		timeout:   timeout,
		now:       time.Now,
		logger:    logger,
		busy:      make(map[string]bool),
	}
}

// History returns the log of a session
func (s *ChatService) History(ctx context.Context, sessionID string) (models.ChatLogResponse, error) {
	messages, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return models.ChatLogResponse{}, err
	}
	return models.ChatLogResponse{Messages: messages, Processing: s.Processing(sessionID)}, nil
}

// Processing reports whether a send is in flight for the session
func (s *ChatService) Processing(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy[sessionID]
}

// Send appends the user message, asks the model and appends its reply.
// The content is stored as typed, minus surrounding whitespace.
// A failing model yields ChatFallbackMessage instead of an error.
func (s *ChatService) Send(ctx context.Context, sessionID, content string) (models.ChatLogResponse, error) {
	text := strings.TrimSpace(content)
	if text == "" {
		return models.ChatLogResponse{}, ErrEmptyMessage
	}
	if !s.acquire(sessionID) {
		return models.ChatLogResponse{}, ErrBusy
	}
	defer s.release(sessionID)

	// The reply is kept even if the client goes away
	ctx = context.WithoutCancel(ctx)

	var prompt string
	err := s.sessions.WithSession(ctx, sessionID, func() error {
		previous, err := s.repo.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		if prompt, err = composePrompt(previous, text); err != nil {
			return err
		}
		userMsg := models.ChatMessage{Role: models.RoleUser, Content: text, Timestamp: s.now().UnixMilli()}
		return s.repo.Save(ctx, sessionID, append(previous, userMsg))
	})
	if err != nil {
		return models.ChatLogResponse{}, err
	}

	reply := s.complete(ctx, sessionID, prompt)

	var current []models.ChatMessage
	err = s.sessions.WithSession(ctx, sessionID, func() error {
		// Re-read so a clear during the model call is respected
		var err error
		if current, err = s.repo.Load(ctx, sessionID); err != nil {
			return err
		}
		current = append(current, models.ChatMessage{
			Role:      models.RoleAssistant,
			Content:   reply,
			Timestamp: s.now().UnixMilli(),
		})
		return s.repo.Save(ctx, sessionID, current)
	})
	if err != nil {
		return models.ChatLogResponse{}, err
	}
	return models.ChatLogResponse{Messages: current}, nil
}

// Clear deletes the log once confirmed
func (s *ChatService) Clear(ctx context.Context, sessionID string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	err := s.sessions.WithSession(ctx, sessionID, func() error {
		return s.repo.Delete(ctx, sessionID)
	})
	if err != nil {
		return fmt.Errorf("failed to clear chat: %w", err)
	}
	s.logger.Info("🧹 Chat cleared", zap.String("session_id", sessionID))
	return nil
}

func (s *ChatService) complete(ctx context.Context, sessionID, prompt string) string {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	reply, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error("❌ Error getting AI response", zap.String("session_id", sessionID), zap.Error(err))
		return ChatFallbackMessage
	}
	return reply
}

func (s *ChatService) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[sessionID] {
		return false
	}
	s.busy[sessionID] = true
	return true
}

func (s *ChatService) release(sessionID string) {
	s.mu.Lock()
	delete(s.busy, sessionID)
	s.mu.Unlock()
}

func composePrompt(previous []models.ChatMessage, message string) (string, error) {
	transcript, err := json.Marshal(previous)
	if err != nil {
		return "", fmt.Errorf("failed to encode transcript: %w", err)
	}
	return fmt.Sprintf(`You are a clothing design assistant for Zava Athletics.
Help the user with clothing design tips and suggestions.
Previous conversation: %s
User message: %s
Provide a helpful, concise response with specific design advice. Limit your response to 3-4 sentences.`,
		transcript, message), nil
}
