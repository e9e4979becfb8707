// Package heuristics provides the local, model-free text responses used
// whenever the remote assistant cannot answer.
package heuristics

import (
	"strings"

	"github.com/ashureev/neurolens/internal/shared"
)

// Mood is a keyword bucket for the companion reply.
type Mood string

const (
	MoodSad     Mood = "sad"
	MoodAngry   Mood = "angry"
	MoodAfraid  Mood = "afraid"
	MoodHappy   Mood = "happy"
	MoodDefault Mood = "default"
)

type moodBucket struct {
	mood     Mood
	keywords []string
	replies  []string
}

// Checked in order; the first bucket with a matching keyword wins.
var moodBuckets = []moodBucket{
	{
		mood:     MoodSad,
		keywords: []string{"sad", "upset", "unhappy", "depressed"},
		replies: []string{
			"I'm sorry you're feeling sad. Would you like a breathing exercise?",
			"That sounds hard. Try taking a slow breath in and out.",
		},
	},
	{
		mood:     MoodAngry,
		keywords: []string{"angry", "mad", "annoyed"},
		replies: []string{
			"It's okay to feel angry. Try counting to ten slowly.",
			"I hear your frustration — a short walk might help.",
		},
	},
	{
		mood:     MoodAfraid,
		keywords: []string{"scared", "afraid", "nervous", "anxious"},
		replies: []string{
			"I'm here with you. Try placing your hand over your heart and breathe.",
			"You're safe here. Take a deep breath with me.",
		},
	},
	{
		mood:     MoodHappy,
		keywords: []string{"happy", "great", "good"},
		replies: []string{
			"That's wonderful — enjoy the feeling!",
			"So glad to hear that — keep smiling!",
		},
	},
}

var defaultReplies = []string{
	"I hear you. Would you like a short breathing exercise?",
	"Thanks for sharing — try taking three slow breaths.",
	"I'm here for you. Want a calming activity suggestion?",
}

// ClassifyMood returns the bucket a message falls into.
func ClassifyMood(message string) Mood {
	m := strings.ToLower(message)
	for _, b := range moodBuckets {
		if containsAny(m, b.keywords) {
			return b.mood
		}
	}
	return MoodDefault
}

// Replies returns a copy of the fixed reply set for a mood.
func Replies(mood Mood) []string {
	for _, b := range moodBuckets {
		if b.mood == mood {
			return append([]string(nil), b.replies...)
		}
	}
	return append([]string(nil), defaultReplies...)
}

// LocalReply picks a supportive reply for the message's mood.
func LocalReply(message string, src shared.Source) string {
	replies := Replies(ClassifyMood(message))
	return replies[src.IntN(len(replies))]
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
