// Package shell holds the view state of one browser tab. A single event loop
// owns the state: navigation, form edits and fetch completions arrive as
// events and every visible change is published as a Frame.
package shell

import (
	"context"
	"errors"
	"html/template"

	"github.com/rewired-gh/arbdash/internal/form"
	"github.com/rewired-gh/arbdash/internal/logger"
	"github.com/rewired-gh/arbdash/internal/metrics"
	"github.com/rewired-gh/arbdash/internal/models"
	"github.com/rewired-gh/arbdash/internal/route"
	"github.com/rewired-gh/arbdash/internal/view"
)

// NoPairNotice is shown instead of fetching when a view needs a pair.
const NoPairNotice = "Select a pair."

// ErrClosed is returned by event methods once the loop has stopped.
var ErrClosed = errors.New("shell closed")

// Fetcher reads the rows of a view request.
type Fetcher interface {
	Fetch(ctx context.Context, req models.ViewRequest) models.FetchResult
}

// Frame is one rendered state: the canonical location to show in the
// address bar and the HTML of the view.
type Frame struct {
	Location string        `json:"location"`
	HTML     template.HTML `json:"html"`
}

// Options wires a shell to its collaborators.
type Options struct {
	Fetcher         Fetcher
	Renderer        *view.Renderer
	DefaultLocation models.Location
}

type event interface{}

type navigateEvent struct{ loc models.Location }

type editEvent struct{ name, value string }

type submitEvent struct{}

type fetchDone struct {
	seq    uint64
	req    models.ViewRequest
	result models.FetchResult
}

// Shell is the state container of one tab. Only Run touches the fields
// below the channels.
type Shell struct {
	id     string
	opts   Options
	events chan event
	frames chan Frame
	done   chan struct{}

	ctx      context.Context
	form     *form.Controller
	location models.Location
	current  models.ViewRequest
	started  bool
	seq      uint64
	result   models.FetchResult
	shown    []models.Record
	notice   string
}

func New(id string, opts Options) *Shell {
	return &Shell{
		id:     id,
		opts:   opts,
		events: make(chan event, 16),
		frames: make(chan Frame, 16),
		done:   make(chan struct{}),
		form:   form.New(),
		result: models.PendingResult(),
	}
}

func (s *Shell) ID() string { return s.id }

// Frames delivers rendered states in the order they were produced. It is
// closed when Run returns.
func (s *Shell) Frames() <-chan Frame { return s.frames }

// Navigate asks the shell to show a location.
func (s *Shell) Navigate(loc models.Location) error {
	return s.send(navigateEvent{loc: loc})
}

// EditField records a form edit.
func (s *Shell) EditField(name, value string) error {
	return s.send(editEvent{name: name, value: value})
}

// Submit submits the search form.
func (s *Shell) Submit() error {
	return s.send(submitEvent{})
}

func (s *Shell) send(ev event) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return ErrClosed
	}
}

// Run is the event loop. It returns when ctx is cancelled.
func (s *Shell) Run(ctx context.Context) {
	s.ctx = ctx
	defer close(s.frames)
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			s.handle(ev)
		}
	}
}

func (s *Shell) handle(ev event) {
	switch ev := ev.(type) {
	case navigateEvent:
		s.navigate(ev.loc)
	case editEvent:
		submit, err := s.form.SetField(ev.name, ev.value)
		if err != nil {
			logger.Warn("Session %s: %v", s.id, err)
			return
		}
		if submit {
			s.submit()
		}
	case submitEvent:
		s.submit()
	case fetchDone:
		s.complete(ev)
	}
}

func (s *Shell) navigate(loc models.Location) {
	if loc.Path == "/" && len(loc.Query()) == 0 {
		loc = s.opts.DefaultLocation
	}
	req := route.Parse(loc)
	s.location = route.Location(req)
	if req.Kind == models.NotFound {
		s.location = loc
	}
	s.form.Sync(req)

	if s.started && req.Equal(s.current) {
		logger.Debug("Session %s: %s unchanged, not refetching", s.id, req)
		s.publish()
		return
	}

	// Rows of another view or pair would sit under a form describing the
	// new request.
	if s.started && (req.Kind != s.current.Kind || req.PairValue() != s.current.PairValue()) {
		s.shown = nil
	}
	s.started = true
	s.current = req
	s.seq++
	s.result = models.PendingResult()
	s.notice = ""

	switch {
	case req.Kind == models.NotFound:
	case req.Kind.RequiresPair() && req.PairValue() == "":
		s.notice = NoPairNotice
	default:
		go s.fetch(s.seq, req)
	}
	s.publish()
}

func (s *Shell) fetch(seq uint64, req models.ViewRequest) {
	result := s.opts.Fetcher.Fetch(s.ctx, req)
	// An error means the loop is gone and nobody is waiting for the result.
	_ = s.send(fetchDone{seq: seq, req: req, result: result})
}

func (s *Shell) complete(ev fetchDone) {
	if ev.seq != s.seq {
		metrics.IncSuperseded(ev.req.Kind.String())
		logger.Debug("Session %s: dropping %s result for superseded %s", s.id, ev.result.Status, ev.req)
		return
	}

	s.result = ev.result
	if ev.result.Status == models.Ready {
		s.shown = ev.result.Rows
	}
	s.publish()
}

func (s *Shell) submit() {
	loc, err := s.form.Submit()
	if err != nil {
		logger.Debug("Session %s: rejected submission: %v", s.id, err)
		s.publish()
		return
	}
	s.navigate(loc)
}

func (s *Shell) publish() {
	html, err := s.opts.Renderer.Render(view.State{
		Request: s.current,
		Result:  s.result,
		Shown:   s.shown,
		Form:    s.form.State(),
		Invalid: s.form.Invalid(),
		Notice:  s.notice,
	})
	if err != nil {
		logger.Error("Session %s: %v", s.id, err)
		return
	}

	select {
	case s.frames <- Frame{Location: s.location.String(), HTML: html}:
	case <-s.ctx.Done():
	}
}
