package otp

import (
	"context"
	"fmt"

	"github.com/example/foodhub/internal/authflow"
)

// Verifier decides whether a code proves the pending identity claim.
// Implementations are placeholders or real backends; none of the built-in
// static policies is a security control.
type Verifier interface {
	Verify(ctx context.Context, pending authflow.PendingAuthRecord, code string) (bool, error)
}

// Issuer sends a fresh code for a pending record. Verifiers that check
// against codes they generated implement it.
type Issuer interface {
	Issue(ctx context.Context, pending authflow.PendingAuthRecord) error
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, pending authflow.PendingAuthRecord, code string) (bool, error)

func (f VerifierFunc) Verify(ctx context.Context, pending authflow.PendingAuthRecord, code string) (bool, error) {
	return f(ctx, pending, code)
}

// DemoPolicy accepts the well-known demo code and the all-zero code and
// rejects everything else.
type DemoPolicy struct {
	Code string
}

func (p DemoPolicy) Verify(_ context.Context, _ authflow.PendingAuthRecord, code string) (bool, error) {
	demo := p.Code
	if demo == "" {
		demo = "123456"
	}
	return code == demo || code == "000000", nil
}

// AcceptAnyPolicy accepts every well-formed code.
type AcceptAnyPolicy struct{}

func (AcceptAnyPolicy) Verify(_ context.Context, _ authflow.PendingAuthRecord, code string) (bool, error) {
	return IsWellFormed(code), nil
}

// IsWellFormed reports whether code is exactly six ASCII digits.
func IsWellFormed(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// PolicyByName resolves a configured policy name. issued must be supplied
// by the caller because it needs storage and a sender.
func PolicyByName(name, demoCode string, issued Verifier) (Verifier, error) {
	switch name {
	case "demo":
		return DemoPolicy{Code: demoCode}, nil
	case "any":
		return AcceptAnyPolicy{}, nil
	case "issued":
		if issued == nil {
			return nil, fmt.Errorf("otp: issued policy is not configured")
		}
		return issued, nil
	}
	return nil, fmt.Errorf("otp: unknown policy %q", name)
}
