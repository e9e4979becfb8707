package dashboard

import (
	"errors"
	"strings"

	"github.com/ashureev/neurolens/internal/client"
)

// Companion panel.
const (
	MsgAssistantUnavailable = "Sorry, the assistant is unavailable."
	MsgAssistantUnreachable = "Error contacting assistant. Please try again."
	MsgNoReply              = "Sorry, I couldn't generate a reply."
)

// Study panel.
const (
	MsgStudyUnavailable      = "Study assistant is unavailable right now."
	MsgStudyUnreachable      = "Could not reach study assistant. Try again."
	MsgNoStudyReply          = "I could not generate a study response right now."
	MsgHighlightsUnavailable = "Could not generate highlights right now."
	MsgHighlightsUnreachable = "Could not contact backend for highlights."
	MsgNoMaterial            = "Please upload a document or paste some text first."
	MsgUnsupportedFormat     = "Unsupported file format."
	MsgDocumentUnreadable    = "Could not read the uploaded document."
)

// Environment panels.
const (
	MsgThresholdsFailed   = "Could not apply thresholds right now."
	MsgAutoAdjustFailed   = "Auto-adjust failed. Please try again."
	MsgBackendUnreachable = "Backend not reachable"
	MsgExceeded           = "Warning: values exceed thresholds"
	MsgWithinThresholds   = "Values within thresholds"
	MsgModeFailed         = "Could not update mode right now."
	MsgStateUnavailable   = "Environment state is temporarily unavailable."
	MsgAdjusting          = "Adjusting environment for comfort"
)

// SamplePrompts seed the companion conversation.
var SamplePrompts = []string{
	"I'm feeling sad and don't know why.",
	"I feel restless and distracted.",
	"I'm nervous about school tomorrow.",
}

// StudyPrompts seed the study conversation.
var StudyPrompts = []string{
	"Summarize this material in simple points.",
	"Explain the toughest topic in easy words.",
	"Ask me 5 quick quiz questions from this.",
}

// replyText maps the outcome of a chat call to the text shown to the child.
// A non-2xx answer, a transport failure and a missing reply each have their
// own message.
func replyText(reply string, err error, unavailable, unreachable, missing string) string {
	var se *client.StatusError
	switch {
	case errors.As(err, &se):
		return unavailable
	case err != nil:
		return unreachable
	case strings.TrimSpace(reply) == "":
		return missing
	}
	return reply
}

func companionReply(reply string, err error) string {
	return replyText(reply, err, MsgAssistantUnavailable, MsgAssistantUnreachable, MsgNoReply)
}

func studyReply(reply string, err error) string {
	return replyText(reply, err, MsgStudyUnavailable, MsgStudyUnreachable, MsgNoStudyReply)
}

func highlightsFailure(err error) string {
	var se *client.StatusError
	if errors.As(err, &se) {
		return MsgHighlightsUnavailable
	}
	return MsgHighlightsUnreachable
}
