package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NathanHTC/Authentication/internal/auth/mail"
	"github.com/NathanHTC/Authentication/internal/auth/store/drivers/sqlite"
	"github.com/NathanHTC/Authentication/pkg/jwtx"
	"github.com/NathanHTC/Authentication/pkg/lockx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// outbox records sent messages. Set fail to make Send return an error.
type outbox struct {
	mu   sync.Mutex
	sent []mail.Message
	fail error
}

func (o *outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail != nil {
		return o.fail
	}
	o.sent = append(o.sent, msg)
	return nil
}

func (o *outbox) last(t *testing.T) mail.Message {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.sent, "no mail sent")
	return o.sent[len(o.sent)-1]
}

// linkToken pulls the trailing token segment out of a mailed link.
func linkToken(t *testing.T, text, prefix string) string {
	t.Helper()
	i := strings.Index(text, prefix)
	require.GreaterOrEqual(t, i, 0, "link %q not found", prefix)
	rest := text[i+len(prefix):]
	if j := strings.IndexAny(rest, " \n"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

type testEnv struct {
	store    *sqlite.Store
	clock    *testClock
	issuer   *jwtx.Issuer
	outbox   *outbox
	metrics  *Metrics
	sessions *SessionManager
	guard    *AccessGuard
	resets   *PasswordResetService
	verify   *EmailVerificationService
}

const testClientURL = "http://client.local"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations(context.Background()))

	clock := &testClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	issuer, err := jwtx.NewIssuer(jwtx.Secrets{
		Access:      []byte("access-secret"),
		Refresh:     []byte("refresh-secret"),
		EmailVerify: []byte("verify-secret"),
	}, jwtx.Codec{Now: clock.Now})
	require.NoError(t, err)

	box := &outbox{}
	metrics := NewMetrics(prometheus.NewRegistry())

	return &testEnv{
		store:   st,
		clock:   clock,
		issuer:  issuer,
		outbox:  box,
		metrics: metrics,
		sessions: &SessionManager{
			Store:   st,
			Issuer:  issuer,
			Locker:  lockx.NewKeyedMutex(),
			Metrics: metrics,
		},
		guard: &AccessGuard{Store: st, Issuer: issuer},
		resets: &PasswordResetService{
			Store:     st,
			Issuer:    issuer,
			Mailer:    box,
			ClientURL: testClientURL,
			Metrics:   metrics,
		},
		verify: &EmailVerificationService{
			Store:     st,
			Issuer:    issuer,
			Mailer:    box,
			ClientURL: testClientURL,
			Metrics:   metrics,
			Now:       clock.Now,
		},
	}
}
