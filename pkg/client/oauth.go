package client

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fastjson"
)

// DefaultScopes grants read access to every activity, private ones included.
var DefaultScopes = []string{"read", "activity:read_all"}

// expiryLeeway treats tokens as expired slightly early so a request does
// not race the real expiry.
const expiryLeeway = time.Minute

// Token is an OAuth access/refresh token pair.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	AthleteID    int64
	AthleteName  string
}

// Expired reports whether the access token must be refreshed before use.
func (t *Token) Expired(now time.Time) bool {
	if t == nil || t.AccessToken == "" {
		return true
	}
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(expiryLeeway).Before(t.ExpiresAt)
}

// OAuthConfig describes the registered API application.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string // e.g. https://www.strava.com/oauth
	RedirectURL  string
	Scopes       []string
}

func (cfg OAuthConfig) validate() error {
	switch {
	case strings.TrimSpace(cfg.ClientID) == "":
		return errors.New("client ID is required")
	case strings.TrimSpace(cfg.ClientSecret) == "":
		return errors.New("client secret is required")
	case strings.TrimSpace(cfg.AuthURL) == "":
		return errors.New("auth URL is required")
	}
	return nil
}

// OAuth runs the authorization code and refresh flows.
type OAuth struct {
	cfg    OAuthConfig
	client *Client
}

// NewOAuth creates an OAuth flow for cfg. opts configure the HTTP client
// used for the token endpoint.
func NewOAuth(cfg OAuthConfig, opts ...ClientOption) (*OAuth, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes
	}
	c, err := NewClient(cfg.AuthURL, opts...)
	if err != nil {
		return nil, err
	}
	return &OAuth{cfg: cfg, client: c}, nil
}

// Config returns the configuration the flow was created with.
func (o *OAuth) Config() OAuthConfig { return o.cfg }

// AuthCodeURL is the page the user visits to grant access. state is echoed
// back to the redirect URL.
func (o *OAuth) AuthCodeURL(state string) string {
	u := o.client.baseURL.JoinPath("authorize")
	q := url.Values{}
	q.Set("client_id", o.cfg.ClientID)
	q.Set("redirect_uri", o.cfg.RedirectURL)
	q.Set("response_type", "code")
	q.Set("approval_prompt", "auto")
	q.Set("scope", strings.Join(o.cfg.Scopes, ","))
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String()
}

// Exchange trades an authorization code for a token.
func (o *OAuth) Exchange(ctx context.Context, code string) (*Token, error) {
	if code == "" {
		return nil, errors.New("authorization code cannot be empty")
	}
	return o.token(ctx, url.Values{
		"grant_type": {"authorization_code"},
		"code":       {code},
	})
}

// Refresh obtains a new access token. The returned token may carry a new
// refresh token; the old one must not be reused.
func (o *OAuth) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	if refreshToken == "" {
		return nil, errors.New("refresh token cannot be empty")
	}
	tok, err := o.token(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	})
	if err != nil {
		return nil, err
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = refreshToken
	}
	return tok, nil
}

func (o *OAuth) token(ctx context.Context, form url.Values) (*Token, error) {
	form.Set("client_id", o.cfg.ClientID)
	form.Set("client_secret", o.cfg.ClientSecret)

	u := o.client.baseURL.JoinPath("token")
	resp, err := o.client.doRequest(ctx, http.MethodPost, u.String(), form)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tok Token
	err = o.client.decodeBody(resp, u.String(), func(v *fastjson.Value) error {
		tok.AccessToken = string(v.GetStringBytes("access_token"))
		tok.RefreshToken = string(v.GetStringBytes("refresh_token"))
		if exp := v.GetInt64("expires_at"); exp > 0 {
			tok.ExpiresAt = time.Unix(exp, 0).UTC()
		} else if in := v.GetInt64("expires_in"); in > 0 {
			tok.ExpiresAt = time.Now().Add(time.Duration(in) * time.Second).UTC()
		}
		if athlete := v.Get("athlete"); athlete != nil {
			tok.AthleteID = athlete.GetInt64("id")
			tok.AthleteName = strings.TrimSpace(string(athlete.GetStringBytes("firstname")) + " " +
				string(athlete.GetStringBytes("lastname")))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, errors.New("token response without access_token")
	}
	return &tok, nil
}

// NewState returns a random value for the OAuth state parameter.
func NewState() string {
	return uuid.NewString()
}

// ReceiveCode serves a single OAuth redirect on addr (host:port) and returns
// the authorization code once a request with the expected state arrives.
func ReceiveCode(ctx context.Context, addr, state string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listen for redirect on %s: %w", addr, err)
	}
	return receiveCode(ctx, ln, state)
}

type codeResult struct {
	code string
	err  error
}

func receiveCode(ctx context.Context, ln net.Listener, state string) (string, error) {
	results := make(chan codeResult, 1)
	var once sync.Once
	deliver := func(r codeResult) {
		once.Do(func() { results <- r })
	}

	srv := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("code") == "" && q.Get("error") == "" {
				http.NotFound(w, r)
				return
			}
			if q.Get("state") != state {
				http.Error(w, "state mismatch", http.StatusBadRequest)
				deliver(codeResult{err: errors.New("oauth redirect: state mismatch")})
				return
			}
			if e := q.Get("error"); e != "" {
				fmt.Fprintf(w, "<p>Authorization failed: %s. You can close this window.</p>", html.EscapeString(e))
				deliver(codeResult{err: fmt.Errorf("oauth redirect: %s", e)})
				return
			}
			fmt.Fprint(w, "<p>Authorized. You can close this window.</p>")
			deliver(codeResult{code: q.Get("code")})
		}),
	}

	go srv.Serve(ln)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-results:
		return r.code, r.err
	}
}

// -----------------------------------------------------------------------------
// Token sources
// -----------------------------------------------------------------------------

// TokenSource supplies a valid access token on demand.
type TokenSource interface {
	Token(ctx context.Context) (*Token, error)
}

// StaticToken always returns the same token.
type StaticToken Token

func (t StaticToken) Token(context.Context) (*Token, error) {
	tok := Token(t)
	return &tok, nil
}

// TokenSaver persists a refreshed token.
type TokenSaver func(context.Context, *Token) error

// RefreshingSource refreshes the token when it expires and hands every new
// token to the saver. It is safe for concurrent use.
type RefreshingSource struct {
	oauth *OAuth
	save  TokenSaver
	now   func() time.Time

	mu  sync.Mutex
	tok *Token
}

// NewRefreshingSource starts from tok, which may already be expired.
func NewRefreshingSource(o *OAuth, tok *Token, save TokenSaver) *RefreshingSource {
	return &RefreshingSource{oauth: o, save: save, now: time.Now, tok: tok}
}

// Token returns a valid token, refreshing it first when needed.
func (s *RefreshingSource) Token(ctx context.Context) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tok == nil {
		return nil, errors.New("not authorized")
	}
	if !s.tok.Expired(s.now()) {
		tok := *s.tok
		return &tok, nil
	}

	fresh, err := s.oauth.Refresh(ctx, s.tok.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if fresh.AthleteID == 0 {
		fresh.AthleteID, fresh.AthleteName = s.tok.AthleteID, s.tok.AthleteName
	}
	if s.save != nil {
		if err := s.save(ctx, fresh); err != nil {
			return nil, fmt.Errorf("save refreshed token: %w", err)
		}
	}
	s.tok = fresh
	tok := *fresh
	return &tok, nil
}

// BearerToken authorizes every request with a token from src.
func BearerToken(src TokenSource) Middleware {
	return func(ctx context.Context, r *http.Request) error {
		tok, err := src.Token(ctx)
		if err != nil {
			return err
		}
		r.Header.Set("Authorization", "Bearer "+tok.AccessToken)
		return nil
	}
}
