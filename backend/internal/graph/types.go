package graph

import "time"

// Message roles as stored on Message nodes
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one conversational turn half inside a session. Position
// establishes order within the owning session.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Position  int64     `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// VectorHit is one similarity-search result from the chunk vector index
type VectorHit struct {
	ChunkID string  `json:"chunk_id"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
}

// UserSchema is the identity descriptor for application users: the email is
// the sole identity key, everything else is a value field.
var UserSchema = MustSchema("User", "email")

// SessionSchema describes conversation session nodes
var SessionSchema = MustSchema("Session", "id")
