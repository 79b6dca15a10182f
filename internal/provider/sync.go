package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"profileimport/internal/model"
)

// SyncAdapter talks to a provider that returns profile data from a single
// request/response exchange.
type SyncAdapter struct {
	name    string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewSyncAdapter creates an adapter for a synchronous provider. The timeout
// bounds each outgoing request.
func NewSyncAdapter(name, baseURL string, timeout time.Duration, logger *slog.Logger) *SyncAdapter {
	return &SyncAdapter{
		name:    name,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With("component", "adapter", "provider", name),
	}
}

func (a *SyncAdapter) Name() string { return a.name }

// Acquire fetches the profile for subject in one call. Non-2xx responses are
// classified and returned as *Error.
func (a *SyncAdapter) Acquire(ctx context.Context, subject string, cred *model.ApiCredential) (RawProfile, error) {
	endpoint := fmt.Sprintf("%s/v1/person/profile?linkedInUrl=%s", a.baseURL, url.QueryEscape(ProfileURL(subject)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Kind: KindTransient, Provider: a.name, Message: "failed to build request", Cause: err}
	}
	req.Header.Set("X-API-Key", cred.Secret)
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransient, Provider: a.name, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		a.logger.Warn("Provider returned error status", "status", resp.StatusCode, "credential_id", cred.ID)
		return nil, &Error{
			Kind:     ClassifyStatus(resp.StatusCode),
			Provider: a.name,
			Message:  fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	return decodeProfileBody(a.name, resp.Body)
}
