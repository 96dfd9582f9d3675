package otp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/example/foodhub/internal/authflow"
)

// DefaultSuccessDelay is how long the verified state is shown before the
// screen navigates into the authenticated area.
const DefaultSuccessDelay = 1500 * time.Millisecond

// Navigator moves the user to another route.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// Params configures a mounted OTP screen.
type Params struct {
	Role      authflow.Role
	Token     string
	Handoff   *authflow.HandoffStore
	Sessions  *authflow.SessionStore
	Verifier  Verifier
	Issuer    Issuer // optional
	Navigator Navigator
	Clock     clockwork.Clock
	Logger    *zap.Logger

	// CooldownSeconds defaults to DefaultCooldownSeconds when zero.
	CooldownSeconds int
	// SuccessDelay defaults to DefaultSuccessDelay when zero.
	SuccessDelay time.Duration
}

func (p Params) withDefaults() Params {
	if p.Clock == nil {
		p.Clock = clockwork.NewRealClock()
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Navigator == nil {
		p.Navigator = NavigatorFunc(func(string) {})
	}
	if p.CooldownSeconds == 0 {
		p.CooldownSeconds = DefaultCooldownSeconds
	}
	if p.SuccessDelay == 0 {
		p.SuccessDelay = DefaultSuccessDelay
	}
	return p
}

// Machine is one mounted OTP screen. All input events are serialized; the
// verifier runs without the lock held and every write after it is guarded
// by the mounted flag.
type Machine struct {
	p   Params
	log *zap.Logger

	mu       sync.Mutex
	pending  authflow.PendingAuthRecord
	digits   [CodeLength]byte
	focus    int
	cooldown int
	status   Status
	errMsg   string
	mounted  bool
	session  *authflow.AuthenticatedSessionRecord
	claimed  bool

	timer    clockwork.Timer
	timerGen uint64
	navTimer clockwork.Timer
}

// Mount reads the pending record and starts the screen. Without one it
// redirects to the role's sign-in route and returns ErrMissingPendingAuth.
func Mount(ctx context.Context, p Params) (*Machine, error) {
	p = p.withDefaults()

	pending, err := p.Handoff.Get(ctx, p.Role, p.Token)
	if err != nil {
		p.Navigator.Navigate(p.Role.SignInRoute())
		if errors.Is(err, authflow.ErrNoPendingAuth) {
			return nil, ErrMissingPendingAuth
		}
		return nil, fmt.Errorf("%w: %v", ErrMissingPendingAuth, err)
	}

	m := &Machine{
		p:        p,
		log:      p.Logger.With(zap.String("role", string(p.Role))),
		pending:  pending,
		cooldown: p.CooldownSeconds,
		status:   StatusEditing,
		mounted:  true,
	}

	m.mu.Lock()
	m.startCooldownLocked()
	m.mu.Unlock()

	m.log.Debug("otp screen mounted", zap.String("method", string(pending.Method)))
	return m, nil
}

// State returns a snapshot of the screen.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	var st State
	for i, d := range m.digits {
		if d != 0 {
			st.Digits[i] = string(d)
		}
	}
	st.FocusedIndex = m.focus
	st.ResendCooldownSeconds = m.cooldown
	st.Status = m.status
	st.Error = m.errMsg
	st.InputsDisabled = !m.acceptsInputLocked()
	st.CanResend = m.acceptsInputLocked() && m.cooldown == 0
	st.Contact = m.pending.Contact
	return st
}

// Session returns the committed session once the code was verified.
func (m *Machine) Session() (authflow.AuthenticatedSessionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return authflow.AuthenticatedSessionRecord{}, false
	}
	return *m.session, true
}

// ClaimSession returns the committed session to the first caller only. The
// HTTP layer mints its bearer token from it, so a hand-off token yields at
// most one bearer token.
func (m *Machine) ClaimSession() (authflow.AuthenticatedSessionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil || m.claimed {
		return authflow.AuthenticatedSessionRecord{}, false
	}
	m.claimed = true
	return *m.session, true
}

// Mounted reports whether the screen still accepts updates.
func (m *Machine) Mounted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mounted
}

// OnDigitInput stores a single digit typed into box index. Anything other
// than one ASCII digit is ignored. Filling the last empty box submits.
func (m *Machine) OnDigitInput(ctx context.Context, index int, input string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.acceptsInputLocked() || index < 0 || index >= CodeLength {
		return nil
	}
	if len(input) != 1 || input[0] < '0' || input[0] > '9' {
		return nil
	}

	m.digits[index] = input[0]
	m.clearErrorLocked()
	if index < CodeLength-1 {
		m.focus = index + 1
	} else {
		m.focus = index
	}

	if m.completeLocked() {
		return m.verifyLocked(ctx, m.codeLocked())
	}
	return nil
}

// OnBackspace clears box index, or the previous box when index is already
// empty, moving focus back in the second case.
func (m *Machine) OnBackspace(index int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.acceptsInputLocked() || index < 0 || index >= CodeLength {
		return
	}

	if m.digits[index] != 0 {
		m.digits[index] = 0
		m.clearErrorLocked()
		return
	}
	if index > 0 {
		m.digits[index-1] = 0
		m.focus = index - 1
		m.clearErrorLocked()
	}
}

// OnPaste fills the boxes from the digits found in text. A full grid submits
// immediately; otherwise focus moves to the first empty box.
func (m *Machine) OnPaste(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.acceptsInputLocked() {
		return nil
	}

	pasted := make([]byte, 0, CodeLength)
	for i := 0; i < len(text) && len(pasted) < CodeLength; i++ {
		if text[i] >= '0' && text[i] <= '9' {
			pasted = append(pasted, text[i])
		}
	}
	if len(pasted) == 0 {
		return nil
	}

	copy(m.digits[:], pasted)
	m.clearErrorLocked()

	// A short paste can still complete the grid when later boxes were
	// already typed.
	if m.completeLocked() {
		m.focus = CodeLength - 1
		return m.verifyLocked(ctx, m.codeLocked())
	}

	m.focus = len(pasted)
	for i, d := range m.digits {
		if d == 0 {
			m.focus = i
			break
		}
	}
	return nil
}

// Verify submits whatever is in the boxes.
func (m *Machine) Verify(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.acceptsInputLocked() {
		return nil
	}
	return m.verifyLocked(ctx, m.codeLocked())
}

// Resend requests a new code. It does nothing while the cooldown runs and
// reports whether it fired.
func (m *Machine) Resend(ctx context.Context) (bool, error) {
	m.mu.Lock()
	if !m.acceptsInputLocked() || m.cooldown > 0 {
		m.mu.Unlock()
		return false, nil
	}

	m.digits = [CodeLength]byte{}
	m.focus = 0
	m.clearErrorLocked()
	m.cooldown = m.p.CooldownSeconds
	m.startCooldownLocked()
	pending := m.pending
	m.mu.Unlock()

	m.log.Info("otp code resend requested")
	if m.p.Issuer == nil {
		return true, nil
	}

	err := m.p.Issuer.Issue(ctx, pending)
	if err != nil {
		m.log.Warn("otp code resend failed", zap.Error(err))
		m.mu.Lock()
		if m.mounted && m.status == StatusEditing {
			m.errMsg = msgResendFailed
		}
		m.mu.Unlock()
	}
	return true, err
}

// Leave is navigation away from the screen: timers stop, later writes are
// dropped and the pending record is discarded.
func (m *Machine) Leave(ctx context.Context) error {
	m.mu.Lock()
	m.unmountLocked()
	m.mu.Unlock()

	return m.p.Handoff.Delete(ctx, m.p.Role, m.p.Token)
}

// Close unmounts the screen without touching the pending record.
func (m *Machine) Close() {
	m.mu.Lock()
	m.unmountLocked()
	m.mu.Unlock()
}

// verifyLocked is called and returns with m.mu held. The lock is released
// while the verifier runs; inputs stay disabled because status is verifying.
func (m *Machine) verifyLocked(ctx context.Context, code string) error {
	if !IsWellFormed(code) {
		m.status = StatusFailed
		m.errMsg = msgIncompleteCode
		return ErrIncompleteCode
	}

	m.status = StatusVerifying
	m.errMsg = ""
	pending := m.pending

	m.mu.Unlock()
	ok, err := m.p.Verifier.Verify(ctx, pending, code)
	m.mu.Lock()

	if !m.mounted {
		return ErrUnmounted
	}
	if err != nil {
		m.log.Warn("otp verification errored", zap.Error(err))
		m.failLocked(msgUnavailable)
		return fmt.Errorf("%w: %v", ErrVerificationRejected, err)
	}
	if !ok {
		m.log.Info("otp code rejected")
		m.failLocked(msgRejected)
		return ErrVerificationRejected
	}

	rec, err := m.p.Sessions.Commit(ctx, pending)
	if err != nil {
		m.log.Error("commit authenticated session", zap.Error(err))
		m.failLocked(msgSessionFailed)
		return err
	}
	// The pending record must not outlive a success; undo the commit when
	// it cannot be removed.
	if err := m.p.Handoff.Delete(ctx, m.p.Role, m.p.Token); err != nil {
		m.log.Error("delete pending auth", zap.Error(err))
		if derr := m.p.Sessions.Delete(ctx, rec.Role, rec.ID); derr != nil {
			m.log.Error("roll back authenticated session", zap.String("session_id", rec.ID), zap.Error(derr))
		}
		m.failLocked(msgSessionFailed)
		return fmt.Errorf("delete pending auth: %w", err)
	}

	m.status = StatusVerified
	m.session = &rec
	m.stopCooldownLocked()
	m.navTimer = m.p.Clock.AfterFunc(m.p.SuccessDelay, m.enterLanding)

	m.log.Info("otp verified", zap.String("session_id", rec.ID))
	return nil
}

func (m *Machine) enterLanding() {
	m.mu.Lock()
	if !m.mounted {
		m.mu.Unlock()
		return
	}
	// Navigate runs under the lock so an unmounted screen always reports
	// its route; navigators must not call back into the machine.
	m.p.Navigator.Navigate(m.p.Role.LandingRoute())
	m.unmountLocked()
	m.mu.Unlock()
}

func (m *Machine) failLocked(msg string) {
	m.status = StatusFailed
	m.errMsg = msg
	m.digits = [CodeLength]byte{}
	m.focus = 0
}

func (m *Machine) clearErrorLocked() {
	if m.status == StatusFailed {
		m.status = StatusEditing
	}
	m.errMsg = ""
}

func (m *Machine) acceptsInputLocked() bool {
	return m.mounted && (m.status == StatusEditing || m.status == StatusFailed)
}

func (m *Machine) completeLocked() bool {
	for _, d := range m.digits {
		if d == 0 {
			return false
		}
	}
	return true
}

func (m *Machine) codeLocked() string {
	code := make([]byte, 0, CodeLength)
	for _, d := range m.digits {
		if d != 0 {
			code = append(code, d)
		}
	}
	return string(code)
}

func (m *Machine) startCooldownLocked() {
	m.stopCooldownLocked()
	if m.cooldown <= 0 {
		m.cooldown = 0
		return
	}
	gen := m.timerGen
	m.timer = m.p.Clock.AfterFunc(time.Second, func() { m.tick(gen) })
}

func (m *Machine) stopCooldownLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.timerGen++
}

func (m *Machine) tick(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.mounted || gen != m.timerGen || m.timer == nil {
		return
	}
	m.cooldown--
	if m.cooldown <= 0 {
		m.cooldown = 0
		m.timer = nil
		return
	}
	m.timer = m.p.Clock.AfterFunc(time.Second, func() { m.tick(gen) })
}

func (m *Machine) unmountLocked() {
	m.mounted = false
	m.stopCooldownLocked()
	if m.navTimer != nil {
		m.navTimer.Stop()
		m.navTimer = nil
	}
}
