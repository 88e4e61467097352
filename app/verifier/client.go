package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lysyi3m/claim-tracker/app/claims"
	"golang.org/x/time/rate"
)

// Request describes the claim to check at one scheduled followup.
type Request struct {
	ClaimID                 string `json:"claim_id"`
	FollowupID              string `json:"followup_id"`
	Type                    string `json:"type"`
	Claim                   string `json:"claim"`
	VerbatimClaim           string `json:"verbatim_claim,omitempty"`
	CompletionCondition     string `json:"completion_condition,omitempty"`
	CompletionConditionDate string `json:"completion_condition_date,omitempty"`
	FollowUpDate            string `json:"follow_up_date"`
	ArticleTitle            string `json:"article_title,omitempty"`
	ArticleLink             string `json:"article_link,omitempty"`
	PreviousVerdict         string `json:"previous_verdict,omitempty"`
}

type response struct {
	Verdict     string             `json:"verdict"`
	ModelOutput claims.ModelOutput `json:"model_output"`
}

// Client talks to the external verification service. Calls are spaced by a
// token bucket so a backlog of due followups does not flood the service.
type Client struct {
	endpoint  string
	apiKey    string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

func NewClient(endpoint, apiKey, userAgent string, requestsPerSecond float64) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &Client{
		endpoint:  strings.TrimRight(endpoint, "/"),
		apiKey:    apiKey,
		userAgent: userAgent,
		http:      &http.Client{Timeout: 2 * time.Minute},
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (c *Client) Verify(ctx context.Context, req Request) (claims.Verification, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return claims.Verification{}, fmt.Errorf("rate limit wait: %w", err)
	}

	var resp response
	if err := c.post(ctx, "/verify", req, &resp); err != nil {
		return claims.Verification{}, err
	}
	if strings.TrimSpace(resp.Verdict) == "" {
		return claims.Verification{}, fmt.Errorf("verification service returned no verdict")
	}

	return claims.Verification{Verdict: resp.Verdict, Output: resp.ModelOutput}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
