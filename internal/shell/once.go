package shell

import (
	"context"
	"errors"

	"github.com/rewired-gh/arbdash/internal/form"
	"github.com/rewired-gh/arbdash/internal/models"
	"github.com/rewired-gh/arbdash/internal/route"
	"github.com/rewired-gh/arbdash/internal/view"
)

// Render draws a location synchronously, for clients without a websocket.
// It fetches at most once and waits for the result.
func Render(ctx context.Context, opts Options, loc models.Location) (Frame, error) {
	if loc.Path == "/" && len(loc.Query()) == 0 {
		loc = opts.DefaultLocation
	}
	req := route.Parse(loc)
	if req.Kind != models.NotFound {
		loc = route.Location(req)
	}

	state := view.State{
		Request: req,
		Result:  models.PendingResult(),
		Form:    form.FromRequest(req),
	}
	switch {
	case req.Kind == models.NotFound:
	case req.Kind.RequiresPair() && req.PairValue() == "":
		state.Notice = NoPairNotice
	default:
		state.Result = opts.Fetcher.Fetch(ctx, req)
	}

	html, err := opts.Renderer.Render(state)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Location: loc.String(), HTML: html}, nil
}

// Search applies submitted form fields to the view at loc. On success it
// returns the location to navigate to. A validation error comes back with
// a frame showing the form as typed and the offending field highlighted.
func Search(opts Options, loc models.Location, fields map[string]string) (models.Location, Frame, error) {
	req := route.Parse(loc)
	c := form.New()
	c.Sync(req)
	for name, value := range fields {
		if _, err := c.SetField(name, value); err != nil && !errors.Is(err, form.ErrUnknownField) {
			return models.Location{}, Frame{}, err
		}
	}

	next, err := c.Submit()
	var verr *form.ValidationError
	if !errors.As(err, &verr) {
		return next, Frame{}, err
	}

	html, rerr := opts.Renderer.Render(view.State{
		Request: req,
		Result:  models.PendingResult(),
		Form:    c.State(),
		Invalid: c.Invalid(),
		Notice:  "Search not sent.",
	})
	if rerr != nil {
		return models.Location{}, Frame{}, rerr
	}
	return models.Location{}, Frame{Location: loc.String(), HTML: html}, err
}
