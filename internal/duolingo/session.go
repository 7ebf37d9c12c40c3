package duolingo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/kapu/lingo-digest-bot/pkg/errors"
)

// Session is the authenticated calling context for one run. It is created by
// Login or WithToken and never changes afterwards.
type Session struct {
	username   string
	accountID  string
	httpClient *http.Client
}

func (s *Session) Username() string {
	return s.username
}

func (s *Session) AccountID() string {
	return s.accountID
}

// HTTPClient returns the client that carries the session's cookies or bearer
// token.
func (s *Session) HTTPClient() *http.Client {
	return s.httpClient
}

type loginResponse struct {
	Username string `json:"username"`
	UserID   any    `json:"user_id"`
	Failure  string `json:"failure"`
	Message  string `json:"message"`
}

// Login signs in with a password and keeps the returned cookies.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	if password == "" {
		return nil, errors.NewConfigurationError("password is empty", "DUOLINGO_PASSWORD")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	httpClient := &http.Client{Timeout: c.timeout, Jar: jar}

	params := url.Values{}
	params.Set("login", username)
	params.Set("password", password)

	resp, body, err := c.doRequest(ctx, httpClient, http.MethodPost, "/login", params)
	if err != nil {
		c.logger.Error("Duolingo login failed", zap.String("username", username), zap.Error(err))
		return nil, errors.NewAuthenticationError("login failed", username, errors.StatusCode(err), err)
	}

	var login loginResponse
	if err := decodeJSON(body, &login); err != nil {
		return nil, errors.NewAuthenticationError("login response unreadable", username, resp.StatusCode, err)
	}
	if login.Failure != "" {
		return nil, errors.NewAuthenticationError(
			fmt.Sprintf("login rejected: %s", login.Failure), username, resp.StatusCode, nil)
	}

	name := login.Username
	if name == "" {
		name = username
	}

	c.logger.Info("Duolingo login succeeded", zap.String("username", name))

	return &Session{
		username:   name,
		accountID:  formatAccountID(login.UserID),
		httpClient: httpClient,
	}, nil
}

// WithToken builds a session from a pre-issued JWT. The account id is read
// from the token's subject without verifying the signature, then the token is
// checked against the profile endpoint.
func (c *Client) WithToken(ctx context.Context, username, token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.NewConfigurationError("token is empty", "DUOLINGO_JWT")
	}

	accountID, err := subjectFromJWT(token)
	if err != nil {
		return nil, errors.NewAuthenticationError("token is not a readable JWT", username, 0, err)
	}

	base := &http.Client{Timeout: c.timeout}
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, base), source)

	session := &Session{
		username:   username,
		accountID:  accountID,
		httpClient: httpClient,
	}

	if _, _, err := c.doRequest(ctx, httpClient, http.MethodGet, profilePath(username), nil); err != nil {
		c.logger.Error("Duolingo token rejected", zap.String("username", username), zap.Error(err))
		return nil, errors.NewAuthenticationError("token rejected", username, errors.StatusCode(err), err)
	}

	c.logger.Info("Duolingo token accepted",
		zap.String("username", username),
		zap.String("account_id", accountID),
	)

	return session, nil
}

func subjectFromJWT(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", err
	}
	// Duolingo issues a numeric sub, which GetSubject rejects
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub, nil
	}
	for _, key := range []string{"sub", "user_id"} {
		if id := formatAccountID(claims[key]); id != "" {
			return id, nil
		}
	}
	return "", nil
}

func formatAccountID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return fmt.Sprint(id)
	}
}
