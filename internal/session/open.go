package session

import (
	"context"
	"strings"

	"github.com/javiermolinar/chousei/internal/payload"
)

// ParseRef reads a share link, a bare query string or a plain schedule id.
// An empty ref is the link of a new schedule.
func ParseRef(ref string) (payload.Link, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return payload.Link{}, nil
	}
	if strings.ContainsAny(ref, "?=/") {
		return payload.ParseLink(ref)
	}
	return payload.Link{ScheduleID: ref}, nil
}

// Open resolves ref for actor and returns a session over the result.
func Open(ctx context.Context, deps Deps, ref, actor string) (*Session, *Result, error) {
	link, err := ParseRef(ref)
	if err != nil {
		return nil, nil, err
	}

	loader := NewLoader(deps.Repo, deps.Log)
	if deps.Now != nil {
		loader = loader.WithClock(deps.Now)
	}

	isCreator, err := loader.IsCreator(ctx, link, actor)
	if err != nil {
		return nil, nil, err
	}
	res, err := loader.Load(ctx, link, actor, isCreator)
	if err != nil {
		return nil, nil, err
	}
	return New(deps, res, actor), res, nil
}
