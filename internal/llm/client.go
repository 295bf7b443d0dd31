// Package llm holds the text-generation backends used to draft cards from a
// free-text prompt.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Generation parameters shared by every backend.
const (
	Temperature = 0.7
	MaxTokens   = 2000
)

// TextGenerator turns an instruction plus user text into raw model output.
// Failures are returned as *Failure.
type TextGenerator interface {
	Generate(ctx context.Context, instruction, userText string) (string, error)
}

// FailureKind classifies a collaborator failure.
type FailureKind string

const (
	// KindAuth: missing or rejected credentials. Not worth retrying.
	KindAuth FailureKind = "auth"
	// KindThrottled: the backend asked the caller to come back later.
	KindThrottled FailureKind = "throttled"
	// KindTransport: the request never produced a response.
	KindTransport FailureKind = "transport"
	// KindOther: any other backend error.
	KindOther FailureKind = "other"
)

// ErrNotConfigured is wrapped by the KindAuth failure returned when no API
// key is set, as opposed to a key the backend rejected.
var ErrNotConfigured = errors.New("API key not configured")

// notConfigured is the failure for a backend without credentials.
func notConfigured(provider string) *Failure {
	return &Failure{Kind: KindAuth, Detail: provider, Err: ErrNotConfigured}
}

// Failure is the error every backend returns.
type Failure struct {
	Kind   FailureKind
	Detail string
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Detail, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure extracts a *Failure from err's chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// Unconfigured is the generator used when no API key is available; every
// call fails with KindAuth.
type Unconfigured struct {
	Provider string
}

func (u Unconfigured) Generate(context.Context, string, string) (string, error) {
	return "", notConfigured(u.Provider)
}

// classifyStatus maps an HTTP status from a backend to a failure kind.
func classifyStatus(status int) FailureKind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 429:
		return KindThrottled
	default:
		return KindOther
	}
}
