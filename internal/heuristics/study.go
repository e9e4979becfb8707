package heuristics

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxPoints is how many key points the highlight extractor returns.
	DefaultMaxPoints = 5

	maxPointRunes = 220
	ellipsis      = "..."

	// Sentences earn one point per this many runes, up to lengthScoreCap.
	lengthScoreStep = 80
	lengthScoreCap  = 2
	keywordScore    = 2
)

var studyKeywords = []string{"important", "key", "must", "should", "therefore", "because", "definition"}

// ExtractKeyPoints picks up to maxPoints sentences from text, favoring
// sentences with study keywords and longer sentences.
func ExtractKeyPoints(text string, maxPoints int) []string {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if cleaned == "" || maxPoints <= 0 {
		return []string{}
	}

	var sentences []string
	for _, s := range strings.Split(cleaned, ".") {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) == 0 {
		return []string{}
	}

	type scored struct {
		score    int
		sentence string
	}
	ranked := make([]scored, 0, len(sentences))
	for _, s := range sentences {
		ranked = append(ranked, scored{score: scoreSentence(s), sentence: s})
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	selected := make([]string, 0, maxPoints)
	for _, r := range ranked[:min(maxPoints, len(ranked))] {
		selected = append(selected, r.sentence)
	}
	if len(selected) == 0 {
		selected = sentences[:min(maxPoints, len(sentences))]
	}

	points := make([]string, 0, len(selected))
	for _, p := range selected {
		points = append(points, truncatePoint(p))
	}
	return points
}

func scoreSentence(s string) int {
	score := 0
	if containsAny(strings.ToLower(s), studyKeywords) {
		score += keywordScore
	}
	return score + min(utf8.RuneCountInString(s)/lengthScoreStep, lengthScoreCap)
}

func truncatePoint(p string) string {
	if utf8.RuneCountInString(p) <= maxPointRunes {
		return p
	}
	return string([]rune(p)[:maxPointRunes]) + ellipsis
}

// StudyAnswer answers a study question from the material alone.
func StudyAnswer(question, text string) string {
	q := strings.ToLower(question)
	points := ExtractKeyPoints(text, 4)

	switch {
	case strings.Contains(q, "summar"):
		if len(points) > 0 {
			return "Quick summary:\n- " + strings.Join(points, "\n- ")
		}
		return "I need more study material to summarize. Please upload a document or paste text."
	case strings.Contains(q, "explain"):
		if len(points) > 0 {
			return "Here is a simple explanation based on your material: " + points[0]
		}
		return "Share the topic text and I can explain it step by step."
	}

	if len(points) > 0 {
		return "From your material, focus on these points:\n- " + strings.Join(points[:min(3, len(points))], "\n- ")
	}
	return "Upload or paste study text and ask me to summarize, explain, or quiz you."
}
