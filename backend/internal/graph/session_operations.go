package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ============================================================================
// Session / Conversation History Operations
// ============================================================================
//
// Graph shape:
//
//	(:User)-[:HAS_SESSION]->(:Session {id})-[:HAS_MESSAGE]->(:Message)
//
// Messages carry a per-session position; the session node itself holds no
// counter, the next position is derived from the current maximum.

// ResolveOrCreateSession returns the effective session id for a turn. A
// supplied id is kept only when the HAS_SESSION edge between the owner and
// that session exists; any other outcome mints a fresh id. An unrecognized
// pair soft-fails to a new session rather than erroring, so a stale or
// foreign id never blocks chatting and never attaches to another user's
// history.
func (r *Repository) ResolveOrCreateSession(ctx context.Context, owner Entity, sessionID string) (string, error) {
	if sessionID == "" {
		return uuid.New().String(), nil
	}

	owns, err := r.OwnsSession(ctx, owner, sessionID)
	if err != nil {
		return "", err
	}
	if !owns {
		fresh := uuid.New().String()
		r.logger.Warn("Session ownership mismatch, minting fresh session",
			zap.String("supplied_session_id", sessionID),
			zap.String("session_id", fresh),
		)
		return fresh, nil
	}
	return sessionID, nil
}

// OwnsSession reports whether the owns-conversation edge exists between the
// owner and the session
func (r *Repository) OwnsSession(ctx context.Context, owner Entity, sessionID string) (bool, error) {
	if err := owner.validate(); err != nil {
		return false, err
	}

	query := fmt.Sprintf(`
		MATCH %s-[:HAS_SESSION]->(s:Session {id: $session_id})
		RETURN count(s) > 0 AS owns
	`, owner.matchPattern("u"))

	params := owner.keyParams()
	params["session_id"] = sessionID

	records, err := r.exec.Execute(ctx, query, params)
	if err != nil {
		return false, err
	}
	if len(records) == 0 {
		return false, nil
	}
	return getBoolFromRecord(records[0], "owns"), nil
}

// LinkSession creates the owns-conversation edge if absent. The owner node
// must already exist; linking is an idempotent merge on both the session node
// and the edge.
func (r *Repository) LinkSession(ctx context.Context, owner Entity, sessionID string) error {
	if err := owner.validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		MATCH %s
		MERGE (s:Session {id: $session_id})
		ON CREATE SET s.created_at = datetime($now)
		MERGE (u)-[:HAS_SESSION]->(s)
	`, owner.matchPattern("u"))

	params := owner.keyParams()
	params["session_id"] = sessionID
	params["now"] = time.Now().UTC().Format(time.RFC3339)

	_, err := r.exec.Execute(ctx, query, params)
	return err
}

// AppendMessages appends messages in call order; each gets a position one
// greater than the session's current maximum. Order across concurrent callers
// of the same session is not arbitrated here.
func (r *Repository) AppendMessages(ctx context.Context, sessionID string, messages []Message) error {
	query := `
		MERGE (s:Session {id: $session_id})
		WITH s
		OPTIONAL MATCH (s)-[:HAS_MESSAGE]->(prev:Message)
		WITH s, coalesce(max(prev.position), 0) AS maxpos
		CREATE (m:Message {
			id: $id,
			role: $role,
			content: $content,
			position: maxpos + 1,
			created_at: datetime($now)
		})
		CREATE (s)-[:HAS_MESSAGE]->(m)
	`

	for _, msg := range messages {
		id := msg.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := r.exec.Execute(ctx, query, map[string]any{
			"session_id": sessionID,
			"id":         id,
			"role":       msg.Role,
			"content":    msg.Content,
			"now":        time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// LoadHistory returns the most recent window exchanges (window*2 messages)
// of a session in chronological order, ready to be used as generation
// context. A missing session yields an empty history.
func (r *Repository) LoadHistory(ctx context.Context, sessionID string, window int) ([]Message, error) {
	if window < 1 {
		window = 3
	}

	query := `
		MATCH (s:Session {id: $session_id})-[:HAS_MESSAGE]->(m:Message)
		RETURN m.id AS id, m.role AS role, m.content AS content,
		       m.position AS position, m.created_at AS created_at
		ORDER BY m.position DESC
		LIMIT $limit
	`

	records, err := r.exec.Execute(ctx, query, map[string]any{
		"session_id": sessionID,
		"limit":      window * 2,
	})
	if err != nil {
		return nil, err
	}

	var messages []Message
	for _, record := range records {
		messages = append(messages, Message{
			ID:        getStringFromRecord(record, "id"),
			Role:      getStringFromRecord(record, "role"),
			Content:   getStringFromRecord(record, "content"),
			Position:  getInt64FromRecord(record, "position"),
			CreatedAt: getTimeFromRecord(record, "created_at"),
		})
	}

	// Reverse to get chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// ClearSession deletes a session. With hard=true the messages and the session
// node itself are detach-deleted. The soft variant is a deferred feature and
// currently leaves the session untouched; the warning makes the no-op
// visible rather than silent.
func (r *Repository) ClearSession(ctx context.Context, sessionID string, hard bool) error {
	if !hard {
		r.logger.Warn("Soft session clear is not implemented, session left intact",
			zap.String("session_id", sessionID),
		)
		return nil
	}

	query := `
		MATCH (s:Session {id: $session_id})
		OPTIONAL MATCH (s)-[:HAS_MESSAGE]->(m:Message)
		DETACH DELETE m, s
	`

	_, err := r.exec.Execute(ctx, query, map[string]any{
		"session_id": sessionID,
	})
	if err != nil {
		return err
	}

	r.logger.Info("Session cleared",
		zap.String("session_id", sessionID),
	)
	return nil
}

// SessionsForOwner lists the session ids linked to an owner, most recently
// created first
func (r *Repository) SessionsForOwner(ctx context.Context, owner Entity) ([]string, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		MATCH %s-[:HAS_SESSION]->(s:Session)
		RETURN s.id AS session_id
		ORDER BY s.created_at DESC
	`, owner.matchPattern("u"))

	records, err := r.exec.Execute(ctx, query, owner.keyParams())
	if err != nil {
		return nil, err
	}

	sessions := make([]string, 0, len(records))
	for _, record := range records {
		sessions = append(sessions, getStringFromRecord(record, "session_id"))
	}
	return sessions, nil
}
