package domain

import (
	"errors"
	"fmt"
)

// ErrTokenNotReceived reports that the provider's token endpoint answered
// with HTTP success but no access token.
var ErrTokenNotReceived = errors.New("provider returned no access token")

// FlowKind classifies a login flow failure so the HTTP layer can translate it
// into exactly one outward signal without inspecting wrapped causes.
type FlowKind string

const (
	// FlowProviderError covers the provider returning an error on the
	// callback or the code exchange failing at the transport level.
	FlowProviderError FlowKind = "provider_error"

	// FlowTokenNotReceived means the exchange succeeded but the response
	// carried no access token.
	FlowTokenNotReceived FlowKind = "token_not_received"

	// FlowInvalidToken means ID token verification failed.
	FlowInvalidToken FlowKind = "invalid_token"

	// FlowInvalidEmail covers domain policy rejection and inactive or
	// absent roster membership.
	FlowInvalidEmail FlowKind = "invalid_email"

	// FlowServerError covers every other unexpected failure, such as a
	// directory 5xx or a migration failure.
	FlowServerError FlowKind = "server_error"
)

// FlowError is a login failure tagged with its classification.
type FlowError struct {
	Kind  FlowKind
	Stage string
	Err   error
}

func (e *FlowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("login flow failed at %s (%s): %v", e.Stage, e.Kind, e.Err)
	}
	return fmt.Sprintf("login flow failed at %s (%s)", e.Stage, e.Kind)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// NewFlowError tags err with a failure kind and the stage it occurred in.
func NewFlowError(kind FlowKind, stage string, err error) *FlowError {
	return &FlowError{Kind: kind, Stage: stage, Err: err}
}
