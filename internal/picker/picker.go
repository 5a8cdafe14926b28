// Package picker asks a user to choose one subtitle candidate. Selection is
// asynchronous: Present returns at once and the answer arrives on the channel.
package picker

import (
	"context"
	"sync"

	"github.com/Belphemur/SubGrab/internal/models"
)

// Request is one prompt: a title, usually the media file name, and the
// candidates in the order to show them.
type Request struct {
	Title      string
	Candidates []models.SubtitleCandidate
}

// Selection is the answer to a Request. OK is false when the user declined;
// Err is set when the prompt itself failed.
type Selection struct {
	Index     int
	Candidate models.SubtitleCandidate
	OK        bool
	Err       error
}

// Picker presents candidates and delivers exactly one Selection on the
// returned channel, which is then closed.
type Picker interface {
	Present(ctx context.Context, req Request) <-chan Selection
}

func selected(req Request, index int) Selection {
	return Selection{Index: index, Candidate: req.Candidates[index], OK: true}
}

func deliver(sel Selection) <-chan Selection {
	ch := make(chan Selection, 1)
	ch <- sel
	close(ch)
	return ch
}

// FirstChoice always selects the first candidate.
type FirstChoice struct{}

func (FirstChoice) Present(ctx context.Context, req Request) <-chan Selection {
	if err := ctx.Err(); err != nil {
		return deliver(Selection{Err: err})
	}
	if len(req.Candidates) == 0 {
		return deliver(Selection{})
	}
	return deliver(selected(req, 0))
}

// Decline declines every prompt. It stands in when nobody can answer.
type Decline struct{}

func (Decline) Present(context.Context, Request) <-chan Selection {
	return deliver(Selection{})
}

// Serialized lets only one prompt of the wrapped picker be open at a time;
// concurrent callers queue.
type Serialized struct {
	mu    sync.Mutex
	inner Picker
}

func NewSerialized(inner Picker) *Serialized {
	return &Serialized{inner: inner}
}

func (s *Serialized) Present(ctx context.Context, req Request) <-chan Selection {
	out := make(chan Selection, 1)
	go func() {
		defer close(out)

		s.mu.Lock()
		defer s.mu.Unlock()

		if err := ctx.Err(); err != nil {
			out <- Selection{Err: err}
			return
		}
		sel, ok := <-s.inner.Present(ctx, req)
		if !ok {
			sel = Selection{}
		}
		out <- sel
	}()
	return out
}
