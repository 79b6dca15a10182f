package provider

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"profileimport/internal/config"
	"profileimport/internal/model"
)

// RawProfile is a provider payload before normalization.
type RawProfile = map[string]interface{}

// Adapter acquires a raw profile for a subject handle using one credential.
// Synchronous providers satisfy it with a single request/response; async
// providers trigger a scrape job and drive the poller internally before
// satisfying the same contract.
type Adapter interface {
	Name() string
	Acquire(ctx context.Context, subject string, cred *model.ApiCredential) (RawProfile, error)
}

// FromConfig builds the configured adapters in preference order.
func FromConfig(cfg config.ImporterConfig, logger *slog.Logger) []Adapter {
	budget := Budget{
		Interval:    cfg.Poll.Interval.Std(),
		MaxDuration: cfg.Poll.MaxDuration.Std(),
		MaxAttempts: cfg.Poll.MaxAttempts,
	}
	adapters := make([]Adapter, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		switch pc.Mode {
		case "async":
			adapters = append(adapters, NewAsyncAdapter(pc.Name, pc.BaseURL, pc.Dataset, cfg.RequestTimeout.Std(), budget, logger))
		default:
			adapters = append(adapters, NewSyncAdapter(pc.Name, pc.BaseURL, cfg.RequestTimeout.Std(), logger))
		}
	}
	return adapters
}

// decodeProfileBody decodes a provider response that carries a profile either
// as a single object or as a one-element array wrapping it. Some providers
// additionally nest the profile under a "person" key.
func decodeProfileBody(providerName string, r io.Reader) (RawProfile, error) {
	var body interface{}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, &Error{Kind: KindTransient, Provider: providerName, Message: "undecodable response body", Cause: err}
	}

	switch v := body.(type) {
	case map[string]interface{}:
		if len(v) == 0 {
			return nil, &Error{Kind: KindTransient, Provider: providerName, Message: "empty profile object"}
		}
		if person, ok := v["person"].(map[string]interface{}); ok {
			return person, nil
		}
		return v, nil
	case []interface{}:
		if len(v) == 0 {
			return nil, &Error{Kind: KindTransient, Provider: providerName, Message: "empty result set"}
		}
		if m, ok := v[0].(map[string]interface{}); ok {
			return m, nil
		}
	}
	return nil, &Error{Kind: KindTransient, Provider: providerName, Message: "unexpected response shape"}
}
