package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/NathanHTC/Authentication/internal/auth/mail"
	"github.com/NathanHTC/Authentication/internal/auth/service"
	"github.com/NathanHTC/Authentication/internal/auth/store/drivers/sqlite"
	"github.com/NathanHTC/Authentication/pkg/authsdk"
	"github.com/NathanHTC/Authentication/pkg/jwtx"
	"github.com/NathanHTC/Authentication/pkg/lockx"
	"github.com/NathanHTC/Authentication/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (c *captureSender) Send(_ context.Context, m mail.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, m)
	return nil
}

func (c *captureSender) lastText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		return ""
	}
	return c.sent[len(c.sent)-1].Text
}

type testServer struct {
	router *Router
	store  *sqlite.Store
	issuer *jwtx.Issuer
	mail   *captureSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations(context.Background()))

	issuer, err := jwtx.NewIssuer(jwtx.Secrets{
		Access:      []byte("a"),
		Refresh:     []byte("r"),
		EmailVerify: []byte("v"),
	}, jwtx.Codec{})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics := service.NewMetrics(reg)
	sender := &captureSender{}

	r := NewRouter("test", st, CookieConfig{}, reg, slogx.Discard())
	r.SessionManager = &service.SessionManager{Store: st, Issuer: issuer, Locker: lockx.NewKeyedMutex(), Metrics: metrics}
	r.AccessGuard = &service.AccessGuard{Store: st, Issuer: issuer}
	r.PasswordReset = &service.PasswordResetService{Store: st, Issuer: issuer, Mailer: sender, ClientURL: "http://client", Metrics: metrics}
	r.EmailVerification = &service.EmailVerificationService{Store: st, Issuer: issuer, Mailer: sender, ClientURL: "http://client", Metrics: metrics}
	r.ApplyRoutes()

	return &testServer{router: r, store: st, issuer: issuer, mail: sender}
}

type result struct {
	code    int
	body    map[string]any
	raw     string
	cookies []*http.Cookie
	header  http.Header
}

func (s *testServer) do(t *testing.T, method, path string, body any, mutate ...func(*http.Request)) result {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	res := result{code: rec.Code, raw: rec.Body.String(), cookies: rec.Result().Cookies(), header: rec.Header()}
	_ = json.Unmarshal(rec.Body.Bytes(), &res.body)
	return res
}

func withCookie(v string) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: authsdk.RefreshCookieName, Value: v}) }
}

func withBearer(v string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+v) }
}

func refreshFrom(t *testing.T, res result) *http.Cookie {
	t.Helper()
	for _, c := range res.cookies {
		if c.Name == authsdk.RefreshCookieName {
			return c
		}
	}
	t.Fatalf("no refresh cookie in response")
	return nil
}

func signupAndSignin(t *testing.T, s *testServer, email, password string) (access string, refresh string) {
	t.Helper()

	res := s.do(t, http.MethodPost, "/auth/signup", authsdk.CredentialsRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, res.code, res.raw)

	res = s.do(t, http.MethodPost, "/auth/signin", authsdk.CredentialsRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, res.code, res.raw)
	return res.body["accessToken"].(string), refreshFrom(t, res).Value
}

func TestIndex(t *testing.T) {
	s := newTestServer(t)
	res := s.do(t, http.MethodGet, "/auth/", nil)
	require.Equal(t, http.StatusOK, res.code)
	require.Equal(t, "hello from the auth router", res.raw)
}

func TestSignupHandler(t *testing.T) {
	s := newTestServer(t)

	res := s.do(t, http.MethodPost, "/auth/signup", authsdk.CredentialsRequest{Email: "a@x.com", Password: "pw"})
	require.Equal(t, http.StatusOK, res.code)
	require.Equal(t, "success", res.body["type"])
	require.Equal(t, "User created successfully!", res.body["message"])
	require.Equal(t, "no-store", res.header.Get("Cache-Control"))

	res = s.do(t, http.MethodPost, "/auth/signup", authsdk.CredentialsRequest{Email: "a@x.com", Password: "pw"})
	require.Equal(t, http.StatusBadRequest, res.code)
	require.Equal(t, "warning", res.body["type"])
	require.Equal(t, "User already exists! Try logging in.", res.body["message"])

	res = s.do(t, http.MethodPost, "/auth/signup", `{"email":`)
	require.Equal(t, http.StatusBadRequest, res.code)
	require.Equal(t, "error", res.body["type"])

	res = s.do(t, http.MethodPost, "/auth/signup", authsdk.CredentialsRequest{Email: "b@x.com"})
	require.Equal(t, http.StatusBadRequest, res.code)
	require.Equal(t, "error", res.body["type"])
}

func TestSigninHandler(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/auth/signup", authsdk.CredentialsRequest{Email: "a@x.com", Password: "pw"})

	res := s.do(t, http.MethodPost, "/auth/signin", authsdk.CredentialsRequest{Email: "a@x.com", Password: "pw"})
	require.Equal(t, http.StatusOK, res.code)
	require.Equal(t, "Welcome! You are signed in", res.body["message"])
	require.NotEmpty(t, res.body["accessToken"])
	require.NotContains(t, res.body, "refreshToken")

	ck := refreshFrom(t, res)
	require.True(t, ck.HttpOnly)
	require.Equal(t, "/", ck.Path)
	require.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	require.Equal(t, int(jwtx.RefreshTokenTTL.Seconds()), ck.MaxAge)

	res = s.do(t, http.MethodPost, "/auth/signin", authsdk.CredentialsRequest{Email: "a@x.com", Password: "bad"})
	require.Equal(t, http.StatusUnauthorized, res.code)
	require.Equal(t, "error", res.body["type"])

	res = s.do(t, http.MethodPost, "/auth/signin", authsdk.CredentialsRequest{Email: "nobody@x.com", Password: "pw"})
	require.Equal(t, http.StatusBadRequest, res.code)
	require.Equal(t, "warning", res.body["type"])
}

func TestRefreshHandler(t *testing.T) {
	s := newTestServer(t)
	_, refresh := signupAndSignin(t, s, "a@x.com", "pw")

	res := s.do(t, http.MethodPost, "/auth/refresh_token", nil, withCookie(refresh))
	require.Equal(t, http.StatusOK, res.code, res.raw)
	require.NotEmpty(t, res.body["accessToken"])
	rotated := refreshFrom(t, res).Value
	require.NotEqual(t, refresh, rotated)

	res = s.do(t, http.MethodPost, "/auth/refresh_token", nil, withCookie(refresh))
	require.Equal(t, http.StatusForbidden, res.code)

	res = s.do(t, http.MethodPost, "/auth/refresh_token", nil)
	require.Equal(t, http.StatusUnauthorized, res.code)

	res = s.do(t, http.MethodPost, "/auth/refresh_token", nil, withCookie("garbage"))
	require.Equal(t, http.StatusUnauthorized, res.code)
}

func TestLogoutHandler(t *testing.T) {
	s := newTestServer(t)
	_, refresh := signupAndSignin(t, s, "a@x.com", "pw")

	res := s.do(t, http.MethodPost, "/auth/logout", nil, withCookie(refresh))
	require.Equal(t, http.StatusOK, res.code)
	ck := refreshFrom(t, res)
	require.Empty(t, ck.Value)
	require.Equal(t, -1, ck.MaxAge)

	res = s.do(t, http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, res.code)
}

func TestProtectedHandler(t *testing.T) {
	s := newTestServer(t)
	access, refresh := signupAndSignin(t, s, "a@x.com", "pw")

	res := s.do(t, http.MethodGet, "/auth/protected", nil, withBearer(access))
	require.Equal(t, http.StatusOK, res.code, res.raw)
	user := res.body["user"].(map[string]any)
	require.Equal(t, "a@x.com", user["email"])
	require.NotContains(t, user, "passwordHash")
	require.NotContains(t, res.raw, "PasswordHash")

	cases := []struct {
		name    string
		mutate  func(*http.Request)
		message string
	}{
		{"missing header", func(*http.Request) {}, "No token"},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }, "Invalid token!"},
		{"refresh token as bearer", withBearer(refresh), "Invalid token!"},
		{"garbage", withBearer("nope"), "Invalid token!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := s.do(t, http.MethodGet, "/auth/protected", nil, tc.mutate)
			require.Equal(t, http.StatusUnauthorized, res.code)
			require.Equal(t, "error", res.body["type"])
			require.Equal(t, tc.message, res.body["message"])
		})
	}

	t.Run("deleted account", func(t *testing.T) {
		ghost, err := s.issuer.IssueAccess("ghost")
		require.NoError(t, err)

		res := s.do(t, http.MethodGet, "/auth/protected", nil, withBearer(ghost))
		require.Equal(t, http.StatusUnauthorized, res.code)
		require.Equal(t, "user doesn't exist!", res.body["message"])
	})
}

func TestPasswordResetHandlers(t *testing.T) {
	s := newTestServer(t)
	signupAndSignin(t, s, "a@x.com", "old")

	res := s.do(t, http.MethodPost, "/auth/send-password-reset-email", authsdk.PasswordResetEmailRequest{Email: "nobody@x.com"})
	require.Equal(t, http.StatusBadRequest, res.code)
	require.Equal(t, "warning", res.body["type"])

	res = s.do(t, http.MethodPost, "/auth/send-password-reset-email", authsdk.PasswordResetEmailRequest{Email: "a@x.com"})
	require.Equal(t, http.StatusOK, res.code, res.raw)

	text := s.mail.lastText()
	i := strings.Index(text, "http://client/reset-password/")
	require.GreaterOrEqual(t, i, 0)
	link := strings.Fields(text[i:])[0]
	path := strings.TrimPrefix(link, "http://client")

	res = s.do(t, http.MethodPost, "/auth"+path, authsdk.ResetPasswordRequest{})
	require.Equal(t, http.StatusBadRequest, res.code)

	res = s.do(t, http.MethodPost, "/auth"+path, authsdk.ResetPasswordRequest{NewPassword: "new"})
	require.Equal(t, http.StatusOK, res.code, res.raw)

	res = s.do(t, http.MethodPost, "/auth"+path, authsdk.ResetPasswordRequest{NewPassword: "again"})
	require.Equal(t, http.StatusUnauthorized, res.code)

	res = s.do(t, http.MethodPost, "/auth/signin", authsdk.CredentialsRequest{Email: "a@x.com", Password: "new"})
	require.Equal(t, http.StatusOK, res.code)
}

func TestEmailVerificationHandlers(t *testing.T) {
	s := newTestServer(t)
	access, _ := signupAndSignin(t, s, "a@x.com", "pw")

	res := s.do(t, http.MethodPost, "/auth/send-verification-email", nil)
	require.Equal(t, http.StatusUnauthorized, res.code)

	res = s.do(t, http.MethodPost, "/auth/send-verification-email", nil, withBearer(access))
	require.Equal(t, http.StatusOK, res.code, res.raw)

	text := s.mail.lastText()
	i := strings.Index(text, "http://client/verify-email/")
	require.GreaterOrEqual(t, i, 0)
	token := strings.TrimPrefix(strings.Fields(text[i:])[0], "http://client/verify-email/")

	res = s.do(t, http.MethodPost, "/auth/verify-email/"+token, nil)
	require.Equal(t, http.StatusOK, res.code, res.raw)
	require.NotEmpty(t, res.body["user"].(map[string]any)["emailVerifiedAt"])

	res = s.do(t, http.MethodPost, "/auth/send-verification-email", nil, withBearer(access))
	require.Equal(t, http.StatusBadRequest, res.code)
	require.Equal(t, "warning", res.body["type"])

	res = s.do(t, http.MethodPost, "/auth/verify-email/bogus", nil)
	require.Equal(t, http.StatusUnauthorized, res.code)
}

func TestSystemEndpoints(t *testing.T) {
	s := newTestServer(t)

	res := s.do(t, http.MethodGet, "/livez", nil)
	require.Equal(t, http.StatusOK, res.code)
	require.Equal(t, "ok", res.body["status"])
	require.NotContains(t, res.body, "checks")
	require.Equal(t, "no-store", res.header.Get("Cache-Control"))

	res = s.do(t, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, res.code)
	require.Equal(t, "ok", res.body["checks"].(map[string]any)["database"])

	s.do(t, http.MethodPost, "/auth/signup", authsdk.CredentialsRequest{Email: "a@x.com", Password: "pw"})
	res = s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, res.code)
	require.Contains(t, res.raw, `auth_signups_total{result="ok"} 1`)

	require.NoError(t, s.store.Close())
	res = s.do(t, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusServiceUnavailable, res.code)
	require.Equal(t, "degraded", res.body["status"])
}

func TestRequestIDEchoed(t *testing.T) {
	s := newTestServer(t)
	res := s.do(t, http.MethodGet, "/livez", nil, func(r *http.Request) { r.Header.Set(slogx.RequestIDHeader, "req-123") })
	require.Equal(t, "req-123", res.header.Get(slogx.RequestIDHeader))
}
