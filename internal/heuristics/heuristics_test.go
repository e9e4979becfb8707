package heuristics

import (
	"math/rand/v2"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalReplyStaysInBucket(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(42, 42))
	cases := map[string]Mood{
		"I feel so sad today":          MoodSad,
		"my brother made me ANGRY":     MoodAngry,
		"I'm nervous about the test":   MoodAfraid,
		"today was great":              MoodHappy,
		"I am eating lunch":            MoodDefault,
		"I'm upset but also happy now": MoodSad,
	}
	for msg, mood := range cases {
		require.Equal(t, mood, ClassifyMood(msg), msg)
		allowed := Replies(mood)
		for range 50 {
			assert.Contains(t, allowed, LocalReply(msg, rng), msg)
		}
	}
}

func TestSadNeverGetsHappyReply(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 9))
	happy := Replies(MoodHappy)
	for range 200 {
		assert.NotContains(t, happy, LocalReply("I am sad", rng))
	}
}

func TestLocalReplyDeterministicWithSeed(t *testing.T) {
	t.Parallel()

	a := rand.New(rand.NewPCG(5, 5))
	b := rand.New(rand.NewPCG(5, 5))
	for range 20 {
		assert.Equal(t, LocalReply("hello", a), LocalReply("hello", b))
	}
}

func TestRepliesReturnsCopy(t *testing.T) {
	t.Parallel()

	r := Replies(MoodSad)
	r[0] = "mutated"
	assert.NotEqual(t, "mutated", Replies(MoodSad)[0])
}

func TestExtractKeyPointsSingleShortSentence(t *testing.T) {
	t.Parallel()

	got := ExtractKeyPoints("Cats sleep a lot", DefaultMaxPoints)
	assert.Equal(t, []string{"Cats sleep a lot"}, got)

	got = ExtractKeyPoints("  Cats sleep a lot.  ", DefaultMaxPoints)
	assert.Equal(t, []string{"Cats sleep a lot"}, got)
}

func TestExtractKeyPointsEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ExtractKeyPoints("", 5))
	assert.Empty(t, ExtractKeyPoints(" ... \n ", 5))
}

func TestExtractKeyPointsPrefersKeywordsStably(t *testing.T) {
	t.Parallel()

	text := "Plants are green. Water is important for plants. The sky is blue. Roots must absorb water. Birds sing"
	got := ExtractKeyPoints(text, 3)
	assert.Equal(t, []string{
		"Water is important for plants",
		"Roots must absorb water",
		"Plants are green",
	}, got)
}

func TestExtractKeyPointsLengthBucket(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 170)
	text := "short one. " + long + ". another short"
	got := ExtractKeyPoints(text, 1)
	require.Len(t, got, 1)
	assert.Equal(t, long, got[0])
}

func TestExtractKeyPointsTruncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("é", 500)
	text := long + ". " + strings.Repeat("key idea ", 40) + ". tiny"
	for _, p := range ExtractKeyPoints(text, 5) {
		assert.LessOrEqual(t, utf8.RuneCountInString(p), 223)
	}
	got := ExtractKeyPoints(long, 1)
	require.Len(t, got, 1)
	assert.True(t, strings.HasSuffix(got[0], "..."))
	assert.Equal(t, 223, utf8.RuneCountInString(got[0]))
}

func TestStudyAnswerSummary(t *testing.T) {
	t.Parallel()

	got := StudyAnswer("Can you summarize this?", "Photosynthesis is important. Leaves hold chlorophyll")
	assert.Equal(t, "Quick summary:\n- Photosynthesis is important\n- Leaves hold chlorophyll", got)

	got = StudyAnswer("Summarize please", "")
	assert.Equal(t, "I need more study material to summarize. Please upload a document or paste text.", got)
}

func TestStudyAnswerExplain(t *testing.T) {
	t.Parallel()

	got := StudyAnswer("Explain it", "Cells divide. Mitosis is the key process")
	assert.Equal(t, "Here is a simple explanation based on your material: Mitosis is the key process", got)

	got = StudyAnswer("explain gravity", "   ")
	assert.Equal(t, "Share the topic text and I can explain it step by step.", got)
}

func TestStudyAnswerDefault(t *testing.T) {
	t.Parallel()

	got := StudyAnswer("quiz me", "One. Two. Three. Four")
	assert.Equal(t, "From your material, focus on these points:\n- One\n- Two\n- Three", got)

	got = StudyAnswer("quiz me", "")
	assert.Equal(t, "Upload or paste study text and ask me to summarize, explain, or quiz you.", got)
}

func TestReplySetsAreFixed(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{
		"It's okay to feel angry. Try counting to ten slowly.",
		"I hear your frustration — a short walk might help.",
	}, Replies(MoodAngry))
	assert.Equal(t, []string{
		"That's wonderful — enjoy the feeling!",
		"So glad to hear that — keep smiling!",
	}, Replies(MoodHappy))
	assert.Equal(t, []string{
		"I hear you. Would you like a short breathing exercise?",
		"Thanks for sharing — try taking three slow breaths.",
		"I'm here for you. Want a calming activity suggestion?",
	}, Replies(MoodDefault))
	assert.Len(t, Replies(MoodSad), 2)
	assert.Len(t, Replies(MoodAfraid), 2)
}
