package otp

import "errors"

// CodeLength is the number of digit boxes on the OTP screen.
const CodeLength = 6

// DefaultCooldownSeconds is the resend cooldown, also started on mount.
const DefaultCooldownSeconds = 60

var (
	// ErrMissingPendingAuth is returned by Mount when no sign-in preceded the
	// screen. The navigator has already been sent to the sign-in route.
	ErrMissingPendingAuth = errors.New("otp: no pending authentication")
	// ErrIncompleteCode is returned when verification is requested before all
	// six digits are present.
	ErrIncompleteCode = errors.New("otp: incomplete code")
	// ErrVerificationRejected is returned when the verifier declines a code.
	ErrVerificationRejected = errors.New("otp: verification rejected")
	// ErrUnmounted is returned when the screen went away while a
	// verification was in flight.
	ErrUnmounted = errors.New("otp: screen unmounted")
)

const (
	msgIncompleteCode = "Please enter the complete 6-digit code"
	msgRejected       = "Invalid verification code. Please try again."
	msgUnavailable    = "We could not verify the code right now. Please try again."
	msgSessionFailed  = "We could not complete sign-in. Please try again."
	msgResendFailed   = "We could not send a new code. Please try again shortly."
)

// Status is the phase of the OTP screen.
type Status int

const (
	StatusEditing Status = iota
	StatusVerifying
	StatusVerified
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusEditing:
		return "editing"
	case StatusVerifying:
		return "verifying"
	case StatusVerified:
		return "verified"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is a snapshot of the screen.
type State struct {
	Digits                [CodeLength]string `json:"digits"`
	FocusedIndex          int                `json:"focused_index"`
	ResendCooldownSeconds int                `json:"resend_cooldown_seconds"`
	Status                Status             `json:"status"`
	Error                 string             `json:"error,omitempty"`
	InputsDisabled        bool               `json:"inputs_disabled"`
	CanResend             bool               `json:"can_resend"`
	Contact               string             `json:"contact"`
}

// Code concatenates the filled slots in order.
func (s State) Code() string {
	code := ""
	for _, d := range s.Digits {
		code += d
	}
	return code
}
