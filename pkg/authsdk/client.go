package authsdk

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// RefreshCookieName is the cookie the server keeps the refresh token in.
const RefreshCookieName = "refreshToken"

// SDKClient is a client for the authentication service.
// It provides access to unauthenticated operations and can create authenticated Sessions.
type SDKClient struct {
	BaseURL string

	// HTTPClient must carry a cookie jar for refresh and logout to work.
	HTTPClient *http.Client
}

// NewSDKClient creates a client with its own cookie jar.
func NewSDKClient(baseURL string) *SDKClient {
	jar, _ := cookiejar.New(nil) // only errors on a non-nil PublicSuffixList

	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// RefreshCookie returns the refresh token currently held in the jar, or "".
func (c *SDKClient) RefreshCookie() string {
	if c.HTTPClient.Jar == nil {
		return ""
	}

	u, err := url.Parse(c.BaseURL + "/")
	if err != nil {
		return ""
	}
	for _, ck := range c.HTTPClient.Jar.Cookies(u) {
		if ck.Name == RefreshCookieName {
			return ck.Value
		}
	}
	return ""
}

// SetRefreshCookie puts a refresh token into the jar, replacing any held
// one. Useful to resume a session or to replay an old token.
func (c *SDKClient) SetRefreshCookie(token string) {
	if c.HTTPClient.Jar == nil {
		return
	}

	u, err := url.Parse(c.BaseURL + "/")
	if err != nil {
		return
	}
	c.HTTPClient.Jar.SetCookies(u, []*http.Cookie{{Name: RefreshCookieName, Value: token, Path: "/"}})
}

// ResumeSession creates a Session from the refresh cookie in the jar by
// rotating it once.
func (c *SDKClient) ResumeSession(ctx context.Context) (*Session, error) {
	tokenResp, err := c.RefreshToken(ctx)
	if err != nil {
		return nil, err
	}
	return newSession(c, tokenResp), nil
}
