// Package assistant answers the companion and study endpoints through a
// remote model, substituting the local heuristics whenever the model cannot
// produce a usable reply.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ashureev/neurolens/internal/heuristics"
	"github.com/ashureev/neurolens/internal/shared"
)

const (
	companionPrompt = "You are a calm, empathetic NeuroLens companion. " +
		"Keep responses brief (1-2 sentences), reassuring, and offer one simple coping strategy or question."
	highlightsPrompt = "Extract the 5 most important study points as short bullet lines."
	studyPrompt      = "You are a patient study assistant for children. " +
		"Explain clearly, keep structure simple, and stay grounded in provided material."

	maxHighlightInputRunes = 8000
	maxStudyContextRunes   = 12000
	maxHighlights          = 5
)

// Endpoint labels.
const (
	EndpointCompanion  = "companion"
	EndpointHighlights = "study_highlights"
	EndpointStudyChat  = "study_chat"
)

// Reply sources.
const (
	SourceLLM   = "llm"
	SourceLocal = "local"
)

// Reply is a text answer and where it came from.
type Reply struct {
	Text   string
	Source string
	// Reason is the fallback reason when Source is SourceLocal.
	Reason string
}

// Highlights is a list of study points and where they came from.
type Highlights struct {
	Points []string
	Source string
	Reason string
}

// Gateway routes each request to the model once and falls back locally.
type Gateway struct {
	completer Completer
	src       shared.Source
	metrics   *Metrics
	logger    *slog.Logger
}

// NewGateway creates a gateway. src must be safe for concurrent use.
func NewGateway(completer Completer, src shared.Source, metrics *Metrics, logger *slog.Logger) *Gateway {
	if completer == nil {
		completer = missingCredential{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{completer: completer, src: src, metrics: metrics, logger: logger}
}

// Companion answers a free-text message from the child.
func (g *Gateway) Companion(ctx context.Context, message string) Reply {
	text, err := g.complete(ctx, EndpointCompanion, companionPrompt, message)
	if err != nil {
		return g.fallback(EndpointCompanion, err, heuristics.LocalReply(message, g.src))
	}
	return g.remote(EndpointCompanion, text)
}

// Highlights extracts the key points of study material.
func (g *Gateway) Highlights(ctx context.Context, text string) Highlights {
	local := heuristics.ExtractKeyPoints(text, heuristics.DefaultMaxPoints)

	reply, err := g.complete(ctx, EndpointHighlights, highlightsPrompt, truncateRunes(text, maxHighlightInputRunes))
	if err == nil {
		if points := parseBulletLines(reply, maxHighlights); len(points) > 0 {
			g.metrics.observeReply(EndpointHighlights, SourceLLM, ReasonNone)
			return Highlights{Points: points, Source: SourceLLM}
		}
		err = ErrEmptyResponse
	}

	reason := FallbackReason(err)
	g.logger.Info("Assistant fallback", "endpoint", EndpointHighlights, "reason", reason, "error", err)
	g.metrics.observeReply(EndpointHighlights, SourceLocal, reason)
	return Highlights{Points: local, Source: SourceLocal, Reason: reason}
}

// StudyAnswer answers a question about the supplied study material.
func (g *Gateway) StudyAnswer(ctx context.Context, question, text string) Reply {
	prompt := fmt.Sprintf(
		"Study Material:\n%s\n\nQuestion: %s\n\nIf material is missing for the answer, say what is missing.",
		truncateRunes(text, maxStudyContextRunes), question,
	)
	reply, err := g.complete(ctx, EndpointStudyChat, studyPrompt, prompt)
	if err != nil {
		return g.fallback(EndpointStudyChat, err, heuristics.StudyAnswer(question, text))
	}
	return g.remote(EndpointStudyChat, reply)
}

func (g *Gateway) complete(ctx context.Context, endpoint, system, user string) (string, error) {
	start := time.Now()
	text, err := g.completer.Complete(ctx, system, user)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyResponse
	}
	if !errors.Is(err, ErrCredentialMissing) {
		g.metrics.observeCall(endpoint, err, time.Since(start))
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (g *Gateway) remote(endpoint, text string) Reply {
	g.metrics.observeReply(endpoint, SourceLLM, ReasonNone)
	return Reply{Text: text, Source: SourceLLM}
}

func (g *Gateway) fallback(endpoint string, err error, text string) Reply {
	reason := FallbackReason(err)
	g.logger.Info("Assistant fallback", "endpoint", endpoint, "reason", reason, "error", err)
	g.metrics.observeReply(endpoint, SourceLocal, reason)
	return Reply{Text: text, Source: SourceLocal, Reason: reason}
}

// parseBulletLines turns a bulleted model reply into plain points.
func parseBulletLines(reply string, limit int) []string {
	var points []string
	for _, line := range strings.Split(reply, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		p := strings.TrimSpace(strings.Trim(line, "- "))
		if p == "" {
			continue
		}
		points = append(points, p)
		if len(points) == limit {
			break
		}
	}
	return points
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
