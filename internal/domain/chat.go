package domain

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatMessage is one entry of the plan assistant transcript.
type ChatMessage struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}
