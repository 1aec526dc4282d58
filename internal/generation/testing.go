package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Stub is a Generator with canned replies per task, for tests. Tasks with
// no reply fail with ErrNoCollaborator; tasks in Errors fail with that error.
type Stub struct {
	Replies map[Task]json.RawMessage
	Errors  map[Task]error
	Images  *Image

	mu    sync.Mutex
	calls map[Task]int
}

func (s *Stub) Mode() Mode { return ModeCollaborator }

func (s *Stub) Text(_ context.Context, req Request, out any) error {
	s.record(req.Task)
	if err, ok := s.Errors[req.Task]; ok {
		return err
	}
	raw, ok := s.Replies[req.Task]
	if !ok {
		return ErrNoCollaborator
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	return nil
}

func (s *Stub) Image(_ context.Context, _, prompt, _, _ string) (*Image, error) {
	s.record(TaskImage)
	if err, ok := s.Errors[TaskImage]; ok {
		return nil, err
	}
	if s.Images == nil {
		return nil, ErrNoCollaborator
	}
	img := *s.Images
	img.RevisedPrompt = prompt
	return &img, nil
}

// Calls returns how many times task was requested.
func (s *Stub) Calls(task Task) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[task]
}

func (s *Stub) record(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[Task]int)
	}
	s.calls[task]++
}
