package dashboard

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ashureev/neurolens/internal/api"
	"github.com/ashureev/neurolens/internal/document"
	"github.com/ashureev/neurolens/internal/domain"
)

// Slider defaults before the backend has reported thresholds.
const (
	defaultBrightnessThreshold = 50
	defaultNoiseThreshold      = 40
)

// PageData feeds the page template.
type PageData struct {
	Role         domain.Role
	Roles        []RoleOption
	Theme        Theme
	Notices      []domain.Notice
	State        StateView
	Parent       *ParentView
	Child        *ChildView
	LiveInterval int64
}

// RoleOption is one choice on the role gate.
type RoleOption struct {
	Value domain.Role
	Label string
}

var roleOptions = []RoleOption{
	{Value: domain.RoleParent, Label: domain.RoleParent.Label()},
	{Value: domain.RoleChild, Label: domain.RoleChild.Label()},
}

// StateView is the environment panel shared by both views.
type StateView struct {
	Available           bool
	Brightness          int
	Noise               int
	BrightnessThreshold int
	NoiseThreshold      int
	Exceeded            bool
	Notice              domain.Notice
}

// ParentView holds the caregiver controls.
type ParentView struct {
	BrightnessThreshold int
	NoiseThreshold      int
	CanAutoAdjust       bool
}

// ChildView holds the child controls for the current mode.
type ChildView struct {
	Mode        domain.ComfortMode
	Modes       []ModeOption
	Study       bool
	History     []domain.ChatEntry
	Prompts     []string
	StudyLoaded string
	Highlights  []string
	Accept      string
}

// ModeOption is one entry of the comfort-mode select.
type ModeOption struct {
	Value    domain.ComfortMode
	Label    string
	Selected bool
}

// newStateView summarizes a backend snapshot for a role. The notice is the
// status line each role sees under the metrics.
func newStateView(role domain.Role, state api.StateResponse, err error) StateView {
	if err != nil {
		sv := StateView{}
		if role == domain.RoleParent {
			sv.Notice = domain.Notice{Level: domain.NoticeError, Text: MsgBackendUnreachable}
		} else {
			sv.Notice = domain.Notice{Level: domain.NoticeWarning, Text: MsgStateUnavailable}
		}
		return sv
	}

	sv := StateView{
		Available:           true,
		Brightness:          state.Brightness,
		Noise:               state.Noise,
		BrightnessThreshold: state.BrightnessThreshold,
		NoiseThreshold:      state.NoiseThreshold,
		Exceeded:            state.Exceeded,
	}
	switch {
	case role == domain.RoleParent && state.Exceeded:
		sv.Notice = domain.Notice{Level: domain.NoticeWarning, Text: MsgExceeded}
	case role == domain.RoleParent:
		sv.Notice = domain.Notice{Level: domain.NoticeSuccess, Text: MsgWithinThresholds}
	case state.Exceeded:
		sv.Notice = domain.Notice{Level: domain.NoticeInfo, Text: MsgAdjusting}
	}
	return sv
}

func newParentView(sv StateView) *ParentView {
	pv := &ParentView{
		BrightnessThreshold: defaultBrightnessThreshold,
		NoiseThreshold:      defaultNoiseThreshold,
		CanAutoAdjust:       sv.Available && sv.Exceeded,
	}
	if sv.Available {
		pv.BrightnessThreshold = sv.BrightnessThreshold
		pv.NoiseThreshold = sv.NoiseThreshold
	}
	return pv
}

func newChildView(s *domain.Session, history []domain.ChatEntry) *ChildView {
	cv := &ChildView{
		Mode:    s.Mode,
		Study:   s.Mode == domain.ModeFocus,
		History: history,
		Prompts: SamplePrompts,
		Accept:  strings.Join(document.Accepted, ","),
	}
	for _, m := range domain.ComfortModes {
		cv.Modes = append(cv.Modes, ModeOption{Value: m, Label: m.Label(), Selected: m == s.Mode})
	}
	if cv.Study {
		cv.Prompts = StudyPrompts
		cv.Highlights = s.Highlights
		if s.StudyText != "" {
			cv.StudyLoaded = studyLoadedMessage(s.StudyText)
		}
	}
	return cv
}

func studyLoadedMessage(text string) string {
	return fmt.Sprintf("Study material loaded (%d characters).", utf8.RuneCountInString(text))
}
