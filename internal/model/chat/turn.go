package chat

// Roles a turn can carry. A query appends exactly one user turn followed by
// one bot turn, so a well-formed history always has even length.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Turn is a single message in a session history. Immutable once appended.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}
