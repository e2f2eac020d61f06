package coach

import (
	"fmt"

	"github.com/2beens/zenith/internal/profile"
)

const historyWindow = 10

// FallbackReply replaces the model text of a turn whose reply could not be generated.
const FallbackReply = "Sorry, I couldn't get a reply from your coach right now. Please try again in a moment."

// Prompt is everything the model sees for one turn.
type Prompt struct {
	System  string
	History []ChatMessage
	Message string
}

func SystemContext(p profile.UserProfile) string {
	format := p.CurrentFormat
	if format == "" {
		format = "not specified"
	}
	return fmt.Sprintf(
		"You are Zenith, a world-class personal trainer and holistic coach. "+
			"Talk like a human, keep it short and practical, and never lecture. "+
			"The user's goal is %s and they are at the %s level. "+
			"Their current training format is %s. "+
			"Respond as if we're in a real conversation.",
		p.Goal, p.Level, format,
	)
}

func buildPrompt(p profile.UserProfile, session ChatSession, message string) Prompt {
	history := session.Tail(historyWindow)
	return Prompt{
		System:  SystemContext(p),
		History: append([]ChatMessage{}, history...),
		Message: message,
	}
}
