package memstore

import (
	"context"
	"errors"
	"sync"

	"github.com/Jmurp11/hockey-team-scheduler/store"
)

// EmailSender records sent messages. When Fail is set it reports transport
// rejection instead of sending.
type EmailSender struct {
	mu   sync.Mutex
	Fail bool
	sent []store.EmailMessage
}

func (e *EmailSender) Send(ctx context.Context, msg store.EmailMessage) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Fail {
		return false, errors.New("transport rejected message")
	}
	e.sent = append(e.sent, msg)
	return true, nil
}

// Sent returns a copy of the accepted messages.
func (e *EmailSender) Sent() []store.EmailMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]store.EmailMessage(nil), e.sent...)
}

// UserContextResolver returns a fixed context for every user id.
type UserContextResolver struct {
	Context *store.UserContext
}

func (r *UserContextResolver) ResolveUserContext(ctx context.Context, userID string) (*store.UserContext, error) {
	if r.Context == nil {
		return nil, store.ErrNotFound
	}
	uc := *r.Context
	uc.UserID = userID
	return &uc, nil
}

// PlaceSearcher returns a fixed result set for every query.
type PlaceSearcher struct {
	Places []store.Place
	Err    error
}

func (p *PlaceSearcher) SearchNearby(ctx context.Context, query, location string, radiusMiles float64) ([]store.Place, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Places, nil
}
