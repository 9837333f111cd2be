package reddit

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const tokenURL = "https://www.reddit.com/api/v1/access_token"

// NewAPIClient builds an HTTP client that authenticates against Reddit with
// the application-only (read-only) client-credentials grant and sends the
// registered User-Agent on every request, including the token exchange.
// Reddit rejects requests carrying default library user agents.
func NewAPIClient(ctx context.Context, clientID, clientSecret, userAgent string) *http.Client {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	base := &http.Client{
		Transport: &userAgentTransport{
			agent: userAgent,
			base:  http.DefaultTransport,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	return cfg.Client(ctx)
}

type userAgentTransport struct {
	agent string
	base  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(clone)
}
