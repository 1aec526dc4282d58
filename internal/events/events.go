// Package events defines the generation progress stream and the sinks it
// can be delivered to.
//
// Every event is a single JSON object whose "type" field selects the
// payload:
//
//	{"type":"generation-id","generationId":"..."}
//	{"type":"progress","phase":7,"phaseName":"...","currentStep":"...","progress":23,"message":"..."}
//	{"type":"complete","success":true,"projectSlug":"...","duration":1234,"qaReport":{...}}
//	{"type":"error","error":"..."}
package events

import (
	"encoding/json"
	"fmt"

	"github.com/fyrsmithlabs/sitesmith/internal/deploy"
	"github.com/fyrsmithlabs/sitesmith/internal/qa"
)

// Type selects the event payload.
type Type string

const (
	TypeGenerationID Type = "generation-id"
	TypeProgress     Type = "progress"
	TypeComplete     Type = "complete"
	TypeError        Type = "error"
)

// Progress is one progress update.
type Progress struct {
	Phase       int    `json:"phase"`
	PhaseName   string `json:"phaseName"`
	CurrentStep string `json:"currentStep"`
	Progress    int    `json:"progress"`
	Message     string `json:"message"`
}

// Complete is the final event of a run that did not abort.
type Complete struct {
	Success     bool           `json:"success"`
	ProjectSlug string         `json:"projectSlug"`
	Duration    int64          `json:"duration"`
	QAReport    *qa.Report     `json:"qaReport"`
	Deployment  *deploy.Result `json:"deployment,omitempty"`
	Errors      []string       `json:"errors,omitempty"`
}

// Event is one element of the stream. GenerationID routes the event and is
// only serialized for TypeGenerationID.
type Event struct {
	Type         Type
	GenerationID string
	Progress     *Progress
	Complete     *Complete
	Error        string
}

// GenerationStarted announces the run id.
func GenerationStarted(id string) Event {
	return Event{Type: TypeGenerationID, GenerationID: id}
}

// Failed reports an aborted run.
func Failed(id string, err error) Event {
	return Event{Type: TypeError, GenerationID: id, Error: err.Error()}
}

func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case TypeGenerationID:
		return json.Marshal(struct {
			Type         Type   `json:"type"`
			GenerationID string `json:"generationId"`
		}{e.Type, e.GenerationID})
	case TypeProgress:
		if e.Progress == nil {
			return nil, fmt.Errorf("progress event without payload")
		}
		return json.Marshal(struct {
			Type Type `json:"type"`
			Progress
		}{e.Type, *e.Progress})
	case TypeComplete:
		if e.Complete == nil {
			return nil, fmt.Errorf("complete event without payload")
		}
		return json.Marshal(struct {
			Type Type `json:"type"`
			Complete
		}{e.Type, *e.Complete})
	case TypeError:
		return json.Marshal(struct {
			Type  Type   `json:"type"`
			Error string `json:"error"`
		}{e.Type, e.Error})
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var head struct {
		Type         Type   `json:"type"`
		GenerationID string `json:"generationId"`
		Error        string `json:"error"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	*e = Event{Type: head.Type, GenerationID: head.GenerationID, Error: head.Error}
	switch head.Type {
	case TypeProgress:
		e.Progress = &Progress{}
		return json.Unmarshal(data, e.Progress)
	case TypeComplete:
		e.Complete = &Complete{}
		return json.Unmarshal(data, e.Complete)
	case TypeGenerationID, TypeError:
		return nil
	default:
		return fmt.Errorf("unknown event type %q", head.Type)
	}
}

// Terminal reports whether no event follows e.
func (e Event) Terminal() bool {
	return e.Type == TypeComplete || e.Type == TypeError
}
