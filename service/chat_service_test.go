package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apparel-designer/models"
	"apparel-designer/repository"
)

type completerFunc func(ctx context.Context, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func newTestChat(completer Completer) *ChatService {
	return NewChatService(repository.NewChatRepository(repository.NewMemoryKVStore()), completer, nil, time.Second, nil)
}

func TestSendAppendsReply(t *testing.T) {
	var prompts []string
	chat := newTestChat(completerFunc(func(ctx context.Context, prompt string) (string, error) {
		prompts = append(prompts, prompt)
		return "Try gold lettering on navy.", nil
	}))
	ctx := context.Background()

	log, err := chat.Send(ctx, "s1", "  What goes with navy?  ")
	require.NoError(t, err)
	require.Len(t, log.Messages, 2)
	assert.Equal(t, models.RoleUser, log.Messages[0].Role)
	assert.Equal(t, "What goes with navy?", log.Messages[0].Content)
	assert.Equal(t, models.RoleAssistant, log.Messages[1].Role)
	assert.Equal(t, "Try gold lettering on navy.", log.Messages[1].Content)
	assert.NotZero(t, log.Messages[0].Timestamp)

	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Zava Athletics")
	assert.Contains(t, prompts[0], "Previous conversation: []")
	assert.Contains(t, prompts[0], "User message: What goes with navy?")
	assert.Contains(t, prompts[0], "3-4 sentences")

	history, err := chat.History(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, log.Messages, history.Messages)
	assert.False(t, history.Processing)
}

func TestPromptCarriesPreviousTranscript(t *testing.T) {
	var last string
	chat := newTestChat(completerFunc(func(ctx context.Context, prompt string) (string, error) {
		last = prompt
		return "ok", nil
	}))
	ctx := context.Background()

	_, err := chat.Send(ctx, "s1", "first")
	require.NoError(t, err)
	_, err = chat.Send(ctx, "s1", "second")
	require.NoError(t, err)

	start := strings.Index(last, "Previous conversation: ") + len("Previous conversation: ")
	end := strings.Index(last, "\nUser message:")
	var transcript []models.ChatMessage
	require.NoError(t, json.Unmarshal([]byte(last[start:end]), &transcript))
	require.Len(t, transcript, 2)
	assert.Equal(t, "first", transcript[0].Content)
	assert.Equal(t, "ok", transcript[1].Content)
}

func TestModelFailureAppendsFallback(t *testing.T) {
	chat := newTestChat(OfflineCompleter{})

	log, err := chat.Send(context.Background(), "s1", "hello")
	require.NoError(t, err)
	require.Len(t, log.Messages, 2)
	last := log.Messages[len(log.Messages)-1]
	assert.Equal(t, models.RoleAssistant, last.Role)
	assert.Equal(t, ChatFallbackMessage, last.Content)
}

func TestSendRejectsEmpty(t *testing.T) {
	chat := newTestChat(OfflineCompleter{})
	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := chat.Send(context.Background(), "s1", content)
		assert.ErrorIs(t, err, ErrEmptyMessage, content)
	}
	history, err := chat.History(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, history.Messages)
}

func TestSendKeepsContentAsTyped(t *testing.T) {
	var prompt string
	chat := newTestChat(completerFunc(func(ctx context.Context, p string) (string, error) {
		prompt = p
		return "ok", nil
	}))
	ctx := context.Background()

	for _, content := range []string{"A<B team", "x<y", "<b>bold</b> letters?"} {
		log, err := chat.Send(ctx, content, "  "+content+" ")
		require.NoError(t, err)
		assert.Equal(t, content, log.Messages[0].Content)
		assert.Contains(t, prompt, "User message: "+content)
	}
}

func TestSendWhileBusy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	chat := newTestChat(completerFunc(func(ctx context.Context, prompt string) (string, error) {
		close(started)
		<-release
		return "done", nil
	}))
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := chat.Send(ctx, "s1", "first")
		assert.NoError(t, err)
	}()
	<-started

	assert.True(t, chat.Processing("s1"))
	_, err := chat.Send(ctx, "s1", "second")
	assert.ErrorIs(t, err, ErrBusy)

	// other sessions are independent
	assert.False(t, chat.Processing("s2"))

	close(release)
	wg.Wait()
	assert.False(t, chat.Processing("s1"))

	history, err := chat.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, "first", history.Messages[0].Content)
}

func TestModelCallSurvivesClientCancel(t *testing.T) {
	chat := newTestChat(completerFunc(func(ctx context.Context, prompt string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		_, hasDeadline := ctx.Deadline()
		if !hasDeadline {
			return "", errors.New("expected a model timeout")
		}
		return "still answered", nil
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	log, err := chat.Send(ctx, "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "still answered", log.Messages[len(log.Messages)-1].Content)
}

func TestClearRequiresConfirmation(t *testing.T) {
	chat := newTestChat(completerFunc(func(context.Context, string) (string, error) { return "hi", nil }))
	ctx := context.Background()

	_, err := chat.Send(ctx, "s1", "hello")
	require.NoError(t, err)

	assert.ErrorIs(t, chat.Clear(ctx, "s1", false), ErrConfirmationRequired)
	history, err := chat.History(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, history.Messages, 2)

	require.NoError(t, chat.Clear(ctx, "s1", true))
	history, err = chat.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history.Messages)
}
