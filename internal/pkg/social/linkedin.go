package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/postpilot/postpilot/internal/pkg/env"
)

const (
	defaultAuthBaseURL = "https://www.linkedin.com/oauth/v2"
	defaultAPIBaseURL  = "https://api.linkedin.com"

	// PostCharacterLimit is the platform's maximum post length.
	PostCharacterLimit = 3000

	oauthScopes = "openid profile email w_member_social"
)

const (
	profileFetchRetries = 2
	retryBaseDelay      = 200 * time.Millisecond
)

// APIError carries a non-success platform response back to the caller. The
// message is surfaced verbatim to the end user since it is often actionable.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform API error (status %d): %s", e.StatusCode, e.Message)
}

// LinkedInClient talks to the social platform's OAuth and publishing APIs.
type LinkedInClient struct {
	ClientID     string
	ClientSecret string
	AuthBaseURL  string
	APIBaseURL   string

	HTTPClient *http.Client
}

func NewLinkedInClientFromEnv() *LinkedInClient {
	return &LinkedInClient{
		ClientID:     strings.TrimSpace(env.GetEnv("LINKEDIN_CLIENT_ID", "")),
		ClientSecret: strings.TrimSpace(env.GetEnv("LINKEDIN_CLIENT_SECRET", "")),
		AuthBaseURL:  strings.TrimSpace(env.GetEnv("LINKEDIN_AUTH_BASE_URL", defaultAuthBaseURL)),
		APIBaseURL:   strings.TrimSpace(env.GetEnv("LINKEDIN_API_BASE_URL", defaultAPIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *LinkedInClient) configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// AuthorizeURL builds the browser redirect target for the authorization-code
// flow. The state value must have been stored one-shot before redirecting.
func (c *LinkedInClient) AuthorizeURL(redirectURI, state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.ClientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)
	q.Set("scope", oauthScopes)
	return strings.TrimRight(c.AuthBaseURL, "/") + "/authorization?" + q.Encode()
}

// TokenResponse is the provider's token endpoint payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope"`
}

// ExchangeCode trades an authorization code for an access token. The
// redirect URI must match the one used to obtain the code. Codes are
// single-use, so this call is never retried automatically.
func (c *LinkedInClient) ExchangeCode(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	if !c.configured() {
		return nil, ErrConfigMissing
	}
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("authorization code is required")
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)

	endpoint := strings.TrimRight(c.AuthBaseURL, "/") + "/accessToken"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: apiErrorMessage(body)}
	}

	var token TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("token exchange: decode response: %w", err)
	}
	if token.AccessToken == "" || token.ExpiresIn <= 0 {
		return nil, fmt.Errorf("token exchange: incomplete token response")
	}
	return &token, nil
}

// Profile is the OIDC userinfo snapshot stored on the connection.
type Profile struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Email   string `json:"email"`
}

// GetProfile fetches the userinfo document for a fresh token. The read is
// idempotent, so transient failures are retried within a small budget.
func (c *LinkedInClient) GetProfile(ctx context.Context, accessToken string) (*Profile, error) {
	endpoint := strings.TrimRight(c.APIBaseURL, "/") + "/v2/userinfo"

	var lastErr error
	for attempt := 0; attempt <= profileFetchRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		profile, retryable, err := c.fetchProfile(ctx, endpoint, accessToken)
		if err == nil {
			return profile, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, lastErr
}

func (c *LinkedInClient) fetchProfile(ctx context.Context, endpoint, accessToken string) (*Profile, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 500 {
		return nil, true, &APIError{StatusCode: resp.StatusCode, Message: apiErrorMessage(body)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, &APIError{StatusCode: resp.StatusCode, Message: apiErrorMessage(body)}
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, false, fmt.Errorf("profile fetch: decode response: %w", err)
	}
	if profile.Sub == "" {
		return nil, false, fmt.Errorf("profile fetch: response missing account id")
	}
	return &profile, false, nil
}

// PostResult identifies the created post.
type PostResult struct {
	PostID  string
	PostURL string
}

type ugcPostRequest struct {
	Author          string         `json:"author"`
	LifecycleState  string         `json:"lifecycleState"`
	SpecificContent map[string]any `json:"specificContent"`
	Visibility      map[string]any `json:"visibility"`
}

// CreatePost publishes content on behalf of the given account. Creating a
// public post is not idempotent, so there is no automatic retry of any kind;
// a 401 is reported as ErrTokenExpired so the caller prompts a reconnect
// instead of a generic retry.
func (c *LinkedInClient) CreatePost(ctx context.Context, accessToken, externalAccountID, content string) (*PostResult, error) {
	if len([]rune(content)) > PostCharacterLimit {
		return nil, ErrContentTooLong
	}

	payload := ugcPostRequest{
		Author:         "urn:li:person:" + externalAccountID,
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary":    map[string]any{"text": content},
				"shareMediaCategory": "NONE",
			},
		},
		Visibility: map[string]any{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(c.APIBaseURL, "/") + "/v2/ugcPosts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: platform rejected the token", ErrTokenExpired)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: apiErrorMessage(body)}
	}

	postID := strings.TrimSpace(resp.Header.Get("X-RestLi-Id"))
	if postID == "" {
		var out struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(body, &out)
		postID = strings.TrimSpace(out.ID)
	}
	if postID == "" {
		return nil, fmt.Errorf("publish: response missing post id")
	}

	return &PostResult{
		PostID:  postID,
		PostURL: "https://www.linkedin.com/feed/update/" + postID + "/",
	}, nil
}

func apiErrorMessage(body []byte) string {
	var out struct {
		Message          string `json:"message"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &out); err == nil {
		if out.Message != "" {
			return out.Message
		}
		if out.ErrorDescription != "" {
			return out.ErrorDescription
		}
		if out.Error != "" {
			return out.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "no response body"
	}
	if len(msg) > 500 {
		msg = msg[:500]
	}
	return msg
}
