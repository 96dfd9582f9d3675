package otp

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/example/foodhub/internal/authflow"
)

// Screens hosts one OTP screen per role and hand-off token for clients that
// drive the screen remotely. Navigation emitted by a screen is recorded so
// the client can follow it.
type Screens struct {
	params  func(authflow.Role) Params
	clock   clockwork.Clock
	idleTTL time.Duration

	mu      sync.Mutex
	screens map[string]*screen

	stop     chan struct{}
	stopOnce sync.Once
}

type screen struct {
	machine  *Machine
	lastSeen time.Time

	navMu      sync.Mutex
	navigateTo string
}

func (s *screen) Navigate(route string) {
	s.navMu.Lock()
	s.navigateTo = route
	s.navMu.Unlock()
}

func (s *screen) route() string {
	s.navMu.Lock()
	defer s.navMu.Unlock()
	return s.navigateTo
}

// NewScreens starts a registry. Screens untouched for idleTTL are closed.
func NewScreens(params func(authflow.Role) Params, idleTTL time.Duration, clock clockwork.Clock) *Screens {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &Screens{
		params:  params,
		clock:   clock,
		idleTTL: idleTTL,
		screens: make(map[string]*screen),
		stop:    make(chan struct{}),
	}
	if idleTTL > 0 {
		go s.cleanupRoutine(time.Minute)
	}
	return s
}

func screenKey(role authflow.Role, token string) string {
	return string(role) + ":" + token
}

// Open returns the screen for token, mounting it on first use. A screen
// that has already unmounted is handed out one last time so the caller can
// read where it navigated; after that the token mounts from scratch, which
// redirects to sign-in once the pending record is gone.
func (s *Screens) Open(ctx context.Context, role authflow.Role, token string) (*Machine, error) {
	key := screenKey(role, token)

	s.mu.Lock()
	if scr, ok := s.screens[key]; ok {
		if !scr.machine.Mounted() {
			delete(s.screens, key)
		}
		scr.lastSeen = s.clock.Now()
		s.mu.Unlock()
		return scr.machine, nil
	}
	s.mu.Unlock()

	scr := &screen{}
	p := s.params(role)
	p.Role = role
	p.Token = token
	p.Navigator = scr
	if p.Clock == nil {
		p.Clock = s.clock
	}

	m, err := Mount(ctx, p)
	if err != nil {
		return nil, err
	}
	scr.machine = m
	scr.lastSeen = s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.screens[key]; ok {
		// Lost a race with a concurrent Open; keep the first screen.
		m.Close()
		return existing.machine, nil
	}
	s.screens[key] = scr
	return m, nil
}

// Lookup returns an already open screen.
func (s *Screens) Lookup(role authflow.Role, token string) (*Machine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scr, ok := s.screens[screenKey(role, token)]
	if !ok {
		return nil, false
	}
	scr.lastSeen = s.clock.Now()
	return scr.machine, true
}

// NavigateTo returns the route m navigated to, if any.
func (s *Screens) NavigateTo(m *Machine) string {
	if nav, ok := m.p.Navigator.(*screen); ok {
		return nav.route()
	}
	return ""
}

// Leave navigates away from the screen and forgets it.
func (s *Screens) Leave(ctx context.Context, role authflow.Role, token string) error {
	key := screenKey(role, token)
	s.mu.Lock()
	scr, ok := s.screens[key]
	delete(s.screens, key)
	s.mu.Unlock()

	if ok {
		return scr.machine.Leave(ctx)
	}
	return s.params(role).Handoff.Delete(ctx, role, token)
}

// Len returns the number of open screens.
func (s *Screens) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.screens)
}

// EvictIdle drops unmounted screens and closes screens untouched for longer
// than the idle TTL.
func (s *Screens) EvictIdle() {
	cutoff := s.clock.Now().Add(-s.idleTTL)

	s.mu.Lock()
	var idle []*screen
	for key, scr := range s.screens {
		if scr.lastSeen.Before(cutoff) || !scr.machine.Mounted() {
			idle = append(idle, scr)
			delete(s.screens, key)
		}
	}
	s.mu.Unlock()

	for _, scr := range idle {
		scr.machine.Close()
	}
}

// Close stops the cleanup routine and unmounts every screen.
func (s *Screens) Close() {
	s.stopOnce.Do(func() { close(s.stop) })

	s.mu.Lock()
	all := s.screens
	s.screens = make(map[string]*screen)
	s.mu.Unlock()

	for _, scr := range all {
		scr.machine.Close()
	}
}

func (s *Screens) cleanupRoutine(every time.Duration) {
	ticker := s.clock.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			s.EvictIdle()
		case <-s.stop:
			return
		}
	}
}
