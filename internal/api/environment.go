package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ashureev/neurolens/internal/domain"
)

// StateResponse is the body of GET /state.
type StateResponse struct {
	Brightness          int                `json:"brightness"`
	Noise               int                `json:"noise"`
	BrightnessThreshold int                `json:"brightness_threshold"`
	NoiseThreshold      int                `json:"noise_threshold"`
	ChildMode           domain.ComfortMode `json:"child_mode"`
	Exceeded            bool               `json:"exceeded"`
}

// NewStateResponse flattens an environment record for the wire.
func NewStateResponse(env domain.Environment) StateResponse {
	return StateResponse{
		Brightness:          env.Brightness,
		Noise:               env.Noise,
		BrightnessThreshold: env.BrightnessThreshold,
		NoiseThreshold:      env.NoiseThreshold,
		ChildMode:           env.Mode,
		Exceeded:            env.Exceeded(),
	}
}

// GetState regenerates the readings and returns the full record.
func (h *Handler) GetState(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, NewStateResponse(h.env.Snapshot()))
}

// GetThresholds returns the current thresholds.
func (h *Handler) GetThresholds(w http.ResponseWriter, _ *http.Request) {
	b, n := h.env.Thresholds()
	JSON(w, http.StatusOK, map[string]int{"brightness": b, "noise": n})
}

// SetThresholds stores caregiver thresholds from ?brightness=&noise=.
func (h *Handler) SetThresholds(w http.ResponseWriter, r *http.Request) {
	b, n, err := levelParams(r)
	if err != nil {
		Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.env.SetThresholds(b, n)
	slog.Info("Thresholds updated", "brightness", b, "noise", n)
	JSON(w, http.StatusOK, map[string]string{"status": "thresholds updated"})
}

// SetEnvironment overwrites the readings from ?brightness=&noise=.
func (h *Handler) SetEnvironment(w http.ResponseWriter, r *http.Request) {
	b, n, err := levelParams(r)
	if err != nil {
		Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.env.SetReadings(b, n)
	JSON(w, http.StatusOK, map[string]string{"status": "environment updated"})
}

// SetChildMode switches the comfort mode from ?mode=.
func (h *Handler) SetChildMode(w http.ResponseWriter, r *http.Request) {
	mode, err := domain.ParseComfortMode(r.URL.Query().Get("mode"))
	if err != nil {
		Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.env.SetMode(mode)
	JSON(w, http.StatusOK, map[string]domain.ComfortMode{"child_mode": mode})
}

// AutoAdjust lowers readings below the thresholds.
func (h *Handler) AutoAdjust(w http.ResponseWriter, _ *http.Request) {
	env := h.env.AutoAdjust()
	slog.Info("Environment auto-adjusted", "brightness", env.Brightness, "noise", env.Noise)
	JSON(w, http.StatusOK, map[string]interface{}{
		"status":     "adjusted",
		"brightness": env.Brightness,
		"noise":      env.Noise,
	})
}

// DetectThresholds derives thresholds from the simulated readings.
func (h *Handler) DetectThresholds(w http.ResponseWriter, _ *http.Request) {
	b, n := h.env.DetectThresholds()
	JSON(w, http.StatusOK, map[string]int{"brightness": b, "noise": n})
}

func levelParams(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	b, err := intParam(q.Get("brightness"), "brightness")
	if err != nil {
		return 0, 0, err
	}
	n, err := intParam(q.Get("noise"), "noise")
	if err != nil {
		return 0, 0, err
	}
	return b, n, nil
}

func intParam(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
