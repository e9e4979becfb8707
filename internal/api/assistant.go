package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Canned replies for requests that carry nothing to answer.
const (
	EmptyMessageReply  = "I didn't receive a message."
	EmptyQuestionReply = "Please ask a study question."
	EmptyStudyMessage  = "No study text provided."
)

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message *string `json:"message"`
}

// StudyRequest is the body of POST /study/highlights.
type StudyRequest struct {
	Text *string `json:"text"`
}

// StudyChatRequest is the body of POST /study/chat.
type StudyChatRequest struct {
	Question *string `json:"question"`
	Text     *string `json:"text"`
}

// ReplyResponse is returned by the chat endpoints.
type ReplyResponse struct {
	Reply  string `json:"reply"`
	Source string `json:"source,omitempty"`
}

// HighlightsResponse is returned by POST /study/highlights.
type HighlightsResponse struct {
	Highlights []string `json:"highlights"`
	Message    string   `json:"message,omitempty"`
	Source     string   `json:"source,omitempty"`
}

// Chat answers the companion conversation. The message may come from the
// ?message= query parameter or a JSON body; the query wins.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	message := r.URL.Query().Get("message")
	if message == "" {
		message = deref(req.Message)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		JSON(w, http.StatusOK, ReplyResponse{Reply: EmptyMessageReply})
		return
	}

	slog.Info("Companion chat request",
		"request_id", chiMiddleware.GetReqID(r.Context()),
		"message_length", len(message),
	)
	reply := h.assistant.Companion(r.Context(), message)
	JSON(w, http.StatusOK, ReplyResponse{Reply: reply.Text, Source: reply.Source})
}

// StudyHighlights extracts the key points of study material.
func (h *Handler) StudyHighlights(w http.ResponseWriter, r *http.Request) {
	var req StudyRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	text := strings.TrimSpace(deref(req.Text))
	if text == "" {
		JSON(w, http.StatusOK, HighlightsResponse{Highlights: []string{}, Message: EmptyStudyMessage})
		return
	}

	res := h.assistant.Highlights(r.Context(), text)
	points := res.Points
	if points == nil {
		points = []string{}
	}
	JSON(w, http.StatusOK, HighlightsResponse{Highlights: points, Source: res.Source})
}

// StudyChat answers a question about the supplied material.
func (h *Handler) StudyChat(w http.ResponseWriter, r *http.Request) {
	var req StudyChatRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	question := strings.TrimSpace(deref(req.Question))
	if question == "" {
		JSON(w, http.StatusOK, ReplyResponse{Reply: EmptyQuestionReply})
		return
	}

	slog.Info("Study chat request",
		"request_id", chiMiddleware.GetReqID(r.Context()),
		"question_length", len(question),
	)
	reply := h.assistant.StudyAnswer(r.Context(), question, strings.TrimSpace(deref(req.Text)))
	JSON(w, http.StatusOK, ReplyResponse{Reply: reply.Text, Source: reply.Source})
}

// decodeOptionalJSON decodes a JSON body if one was sent. An empty body or a
// JSON null leaves v untouched.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	err := json.NewDecoder(r.Body).Decode(v)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	case errors.As(err, &tooLarge):
		return errors.New("request body too large")
	}
	return errors.New("invalid request body")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
