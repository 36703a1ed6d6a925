package agent

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/memory/sqlite3"
)

type Conversations interface {
	Context(ctx context.Context, sessionID string) (string, error)
	Append(ctx context.Context, sessionID, query, answer string) error
}

// History keeps per-session chat transcripts in sqlite and renders them as conversation context.
type History struct {
	db *sql.DB
}

func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat history: %w", err)
	}

	return &History{db: db}, nil
}

func (h *History) session(sessionID string) *sqlite3.SqliteChatMessageHistory {
	return sqlite3.NewSqliteChatMessageHistory(
		sqlite3.WithSession(sessionID),
		sqlite3.WithDB(h.db),
	)
}

func (h *History) Context(ctx context.Context, sessionID string) (string, error) {
	messages, err := h.session(sessionID).Messages(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load chat history: %w", err)
	}

	return llms.GetBufferString(messages, "Human", "AI")
}

func (h *History) Append(ctx context.Context, sessionID, query, answer string) error {
	session := h.session(sessionID)
	if err := session.AddUserMessage(ctx, query); err != nil {
		return fmt.Errorf("failed to save user message: %w", err)
	}
	if err := session.AddAIMessage(ctx, answer); err != nil {
		return fmt.Errorf("failed to save ai message: %w", err)
	}

	return nil
}

func (h *History) Close() error {
	return h.db.Close()
}
