// Package cisprofiles is the profile store client for the CIS person API
// (reads) and change API (writes).
package cisprofiles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/groupsync/internal/app/system/profilestore"
	"github.com/dalemusser/groupsync/internal/app/system/signing"
	"github.com/dalemusser/groupsync/internal/app/system/timeouts"
	"github.com/dalemusser/groupsync/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Config locates the CIS APIs and the token endpoint used to call them.
type Config struct {
	PersonAPIURL string // e.g. https://person.api.sso.example.com
	ChangeAPIURL string // e.g. https://change.api.sso.example.com

	// Client credentials for the bearer token. When TokenURL is empty the
	// APIs are called without authentication (local mocks).
	TokenURL     string
	ClientID     string
	ClientSecret string
	Audience     string
}

// Client implements profilestore.Client over HTTP.
type Client struct {
	http      *http.Client
	personURL string
	changeURL string
	signer    signing.Signer
	log       *zap.Logger
}

var _ profilestore.Client = (*Client)(nil)

// New builds a Client. ctx scopes the token source's HTTP client and should
// live as long as the Client.
func New(ctx context.Context, cfg Config, signer signing.Signer, logger *zap.Logger) *Client {
	httpClient := &http.Client{}
	if cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		if cfg.Audience != "" {
			cc.EndpointParams = url.Values{"audience": {cfg.Audience}}
		}
		httpClient = cc.Client(context.WithValue(ctx, oauth2.HTTPClient, httpClient))
	}
	return &Client{
		http:      httpClient,
		personURL: strings.TrimRight(cfg.PersonAPIURL, "/"),
		changeURL: strings.TrimRight(cfg.ChangeAPIURL, "/"),
		signer:    signer,
		log:       logger,
	}
}

// Signer implements profilestore.Client.
func (c *Client) Signer() signing.Signer {
	return c.signer
}

// GetUserBy implements profilestore.Client.
func (c *Client) GetUserBy(ctx context.Context, id string, by profilestore.GetBy, filter *string) (models.Profile, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Fetch(), c.log, "fetch profile")
	defer cancel()

	u := fmt.Sprintf("%s/v2/user/%s/%s", c.personURL, by, url.PathEscape(id))
	if filter != nil {
		u += "?" + url.Values{"filterDisplay": {*filter}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.Profile{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Profile{}, fmt.Errorf("person api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.Profile{}, profilestore.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return models.Profile{}, statusError("person api", resp)
	}

	var p models.Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return models.Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	// The person API answers unknown users with an empty profile.
	if p.ID() == "" {
		return models.Profile{}, profilestore.ErrNotFound
	}
	return p, nil
}

// UpdateUser implements profilestore.Client.
func (c *Client) UpdateUser(ctx context.Context, id string, profile models.Profile) error {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Publish(), c.log, "publish profile")
	defer cancel()

	body, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	u := c.changeURL + "/v2/user?" + url.Values{"user_id": {id}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("change api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError("change api", resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func statusError(api string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%s: unexpected status %d: %s", api, resp.StatusCode, strings.TrimSpace(string(snippet)))
}
