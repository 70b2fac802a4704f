package livestream

import (
	"context"
	"errors"
	"fmt"
)

// Outcome classifies how a webhook delivery was handled.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeMalformed Outcome = "malformed"
	OutcomeRejected  Outcome = "rejected"
	OutcomeFailed    Outcome = "failed"
)

// Result describes a handled webhook delivery.
type Result struct {
	Outcome Outcome
	Update  Update
}

// Service authenticates webhook deliveries, applies their state transitions,
// and serves stream lookups for the rendering path.
type Service struct {
	verifier *Verifier
	store    Store
}

// NewService returns a Service that checks signatures with verifier and
// persists state in store.
func NewService(verifier *Verifier, store Store) *Service {
	return &Service{verifier: verifier, store: store}
}

// HandleWebhook verifies and applies one delivery. body must be the raw
// request body exactly as received.
//
// The returned error wraps ErrAuthentication or ErrMisconfiguredSecret when
// the delivery is rejected, ErrMalformedPayload when a recognized event is
// missing fields, or a store error. Unrecognized events are not errors.
// Nothing is written unless the whole event was extracted.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) (Result, error) {
	if err := s.verifier.Verify(body, signature); err != nil {
		return Result{Outcome: OutcomeRejected}, err
	}

	u, err := Dispatch(body)
	switch {
	case errors.Is(err, ErrUnrecognizedEvent):
		return Result{Outcome: OutcomeIgnored, Update: u}, nil
	case err != nil:
		return Result{Outcome: OutcomeMalformed, Update: u}, err
	}

	if err := s.store.Upsert(ctx, u.Record); err != nil {
		return Result{Outcome: OutcomeFailed, Update: u}, fmt.Errorf("upsert stream %q: %w", u.Record.StreamID, err)
	}
	return Result{Outcome: OutcomeApplied, Update: u}, nil
}

// Lookup returns the stored record for streamID. An empty streamID is
// reported as not found without touching the store.
func (s *Service) Lookup(ctx context.Context, streamID string) (StreamRecord, bool, error) {
	if streamID == "" {
		return StreamRecord{}, false, nil
	}
	rec, found, err := s.store.Lookup(ctx, streamID)
	if err != nil {
		return StreamRecord{}, false, fmt.Errorf("lookup stream %q: %w", streamID, err)
	}
	return rec, found, nil
}
