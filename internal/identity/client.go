package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samarthc/loan-manager-backend/internal/domain"
)

// Client talks to the identity provider's backend API to resolve a provider
// identifier to the account profile. The provider owns authentication; this
// service only reads profiles.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// IsConfigured returns true if the provider credentials are set.
func (c *Client) IsConfigured() bool {
	return c.baseURL != "" && c.secretKey != ""
}

// providerUser is the provider's user representation; only the fields this
// service reads are decoded.
type providerUser struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

// GetProfile fetches the user's profile from the provider by its identifier.
func (c *Client) GetProfile(ctx context.Context, providerID string) (domain.Profile, error) {
	endpoint := c.baseURL + "/v1/users/" + url.PathEscape(providerID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Profile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("failed to read profile response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return domain.Profile{}, domain.ErrUserNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Profile{}, fmt.Errorf("profile request failed: %s", string(body))
	}

	var u providerUser
	if err := json.Unmarshal(body, &u); err != nil {
		return domain.Profile{}, fmt.Errorf("failed to parse profile: %w", err)
	}

	if u.ID == "" {
		return domain.Profile{}, errors.New("invalid profile: missing id")
	}
	if len(u.EmailAddresses) == 0 || u.EmailAddresses[0].EmailAddress == "" {
		return domain.Profile{}, errors.New("invalid profile: missing email address")
	}

	name := strings.TrimSpace(u.FirstName + " " + u.LastName)

	return domain.Profile{
		ProviderID: u.ID,
		Email:      u.EmailAddresses[0].EmailAddress,
		Name:       name,
	}, nil
}
