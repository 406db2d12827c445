package githubauth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// EnvGitHubToken names the environment variable holding the personal access token.
const EnvGitHubToken = "GITHUB_TOKEN"

const (
	tokenMissingMessageConstant = "github token must be provided"
)

// ErrTokenMissing indicates an empty token was supplied.
var ErrTokenMissing = errors.New(tokenMissingMessageConstant)

// NewTokenSource returns a static oauth2 token source for the provided personal access token.
func NewTokenSource(token string) (oauth2.TokenSource, error) {
	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return nil, ErrTokenMissing
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: trimmedToken}), nil
}

// NewHTTPClient builds an HTTP client that authenticates every request with the token.
// A non-nil base client supplies the underlying transport.
func NewHTTPClient(clientContext context.Context, token string, baseClient *http.Client) (*http.Client, error) {
	tokenSource, tokenError := NewTokenSource(token)
	if tokenError != nil {
		return nil, tokenError
	}

	if clientContext == nil {
		clientContext = context.Background()
	}
	if baseClient != nil {
		clientContext = context.WithValue(clientContext, oauth2.HTTPClient, baseClient)
	}

	return oauth2.NewClient(clientContext, tokenSource), nil
}
