package llm

import (
	"fmt"
	"strings"
)

// SplitSystem separates the system text from the rest of the conversation.
// The relative order of the remaining messages is preserved.
func SplitSystem(messages []Message, policy SystemPolicy) (string, []Message, error) {
	var (
		systems   []string
		remaining = make([]Message, 0, len(messages))
	)
	for i, msg := range messages {
		if !msg.Role.Valid() {
			return "", nil, fmt.Errorf("message %d: %w %q", i, ErrInvalidRole, msg.Role)
		}
		if msg.Role == RoleSystem {
			systems = append(systems, msg.Content)
			continue
		}
		remaining = append(remaining, msg)
	}

	if len(systems) == 0 {
		return "", nil, ErrMissingSystemMessage
	}
	if len(remaining) == 0 {
		return "", nil, ErrEmptyConversation
	}

	switch policy {
	case SystemConcat:
		return strings.Join(systems, "\n\n"), remaining, nil
	case SystemStrict:
		if len(systems) > 1 {
			return "", nil, fmt.Errorf("%w: found %d", ErrMultipleSystemMessages, len(systems))
		}
	}
	return systems[0], remaining, nil
}
