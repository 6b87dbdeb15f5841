package models

// ChatRole is the author of a design helper message
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of the design helper log.
// Timestamp is milliseconds since the Unix epoch.
type ChatMessage struct {
	Role      ChatRole `json:"role"`
	Content   string   `json:"content"`
	Timestamp int64    `json:"timestamp"`
}

// ChatSendRequest is the body of POST /sessions/{id}/chat
// Example: {"content": "What colors go well with navy?"}
type ChatSendRequest struct {
	Content string `json:"content"`
}

// ChatLogResponse wraps the full message log
type ChatLogResponse struct {
	Messages   []ChatMessage `json:"messages"`
	Processing bool          `json:"processing"`
}
