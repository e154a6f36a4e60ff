package portal

import (
	"context"
	"fmt"
	"sync"

	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/ports/gateways"
)

// FakeDialer is a scriptable in-process portal used by tests and local
// runs. Outcomes are keyed per entry ID; unscripted entries succeed.
type FakeDialer struct {
	mu sync.Mutex

	// ValidSecret, when set, is the only secret Login accepts.
	ValidSecret string
	// LoginErr, when set, fails every Login with this error.
	LoginErr error

	entryErrs map[string]error
	submitted []string
	logins    int
}

var _ gateways.PortalDialer = (*FakeDialer)(nil)

func NewFakeDialer() *FakeDialer {
	return &FakeDialer{entryErrs: make(map[string]error)}
}

// FailEntry scripts a rejection for the given entry ID.
func (d *FakeDialer) FailEntry(entryID string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entryErrs[entryID] = err
}

// Submitted returns entry IDs in submission order.
func (d *FakeDialer) Submitted() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.submitted))
	copy(out, d.submitted)
	return out
}

// Logins returns how many sessions were opened.
func (d *FakeDialer) Logins() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.logins
}

func (d *FakeDialer) Login(ctx context.Context, loginID, secret string) (gateways.PortalSession, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.LoginErr != nil {
		return nil, d.LoginErr
	}
	if d.ValidSecret != "" && secret != d.ValidSecret {
		return nil, fmt.Errorf("%w: invalid portal credentials", apperrors.ErrPortalRejection)
	}
	d.logins++
	return &fakeSession{dialer: d}, nil
}

type fakeSession struct {
	dialer    *FakeDialer
	loggedOut bool
}

var _ gateways.PortalSession = (*fakeSession)(nil)

func (s *fakeSession) SubmitEntry(ctx context.Context, entry gateways.PortalEntry) error {
	s.dialer.mu.Lock()
	defer s.dialer.mu.Unlock()
	if err := s.dialer.entryErrs[entry.EntryID]; err != nil {
		return err
	}
	s.dialer.submitted = append(s.dialer.submitted, entry.EntryID)
	return nil
}

func (s *fakeSession) Logout(ctx context.Context) error {
	s.loggedOut = true
	return nil
}
