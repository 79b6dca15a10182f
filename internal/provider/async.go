package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"profileimport/internal/model"
)

// JobHandle references an in-progress scrape job. It is held only for the
// duration of one import attempt and never persisted.
type JobHandle struct {
	Provider  string
	JobID     string
	CreatedAt time.Time
}

// AsyncAdapter talks to a provider with a trigger-then-poll job protocol: the
// trigger call returns a job id, and the data is fetched later from a status
// endpoint. It satisfies the same Adapter contract as the synchronous
// adapters by driving the poll loop internally.
type AsyncAdapter struct {
	name    string
	baseURL string
	dataset string
	client  *http.Client
	poller  *Poller
	logger  *slog.Logger
}

func NewAsyncAdapter(name, baseURL, dataset string, timeout time.Duration, budget Budget, logger *slog.Logger) *AsyncAdapter {
	return &AsyncAdapter{
		name:    name,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		dataset: dataset,
		client:  &http.Client{Timeout: timeout},
		poller:  NewPoller(budget, logger),
		logger:  logger.With("component", "adapter", "provider", name),
	}
}

func (a *AsyncAdapter) Name() string { return a.name }

func (a *AsyncAdapter) Acquire(ctx context.Context, subject string, cred *model.ApiCredential) (RawProfile, error) {
	handle, err := a.trigger(ctx, subject, cred)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Scrape job triggered", "job_id", handle.JobID, "credential_id", cred.ID)
	return a.poller.Poll(ctx, a.name, func(ctx context.Context) (StatusResult, error) {
		return a.fetchStatus(ctx, handle, cred)
	})
}

// trigger starts a scrape job for the subject and returns its handle.
func (a *AsyncAdapter) trigger(ctx context.Context, subject string, cred *model.ApiCredential) (*JobHandle, error) {
	payload, err := json.Marshal([]map[string]string{{"url": ProfileURL(subject)}})
	if err != nil {
		return nil, &Error{Kind: KindTransient, Provider: a.name, Message: "failed to encode trigger payload", Cause: err}
	}

	endpoint := fmt.Sprintf("%s/datasets/v3/trigger?dataset_id=%s&format=json", a.baseURL, a.dataset)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Kind: KindTransient, Provider: a.name, Message: "failed to build trigger request", Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+cred.Secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransient, Provider: a.name, Message: "trigger request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &Error{
			Kind:     ClassifyStatus(resp.StatusCode),
			Provider: a.name,
			Message:  fmt.Sprintf("trigger status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var triggerResp struct {
		SnapshotID string `json:"snapshot_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&triggerResp); err != nil {
		return nil, &Error{Kind: KindTransient, Provider: a.name, Message: "undecodable trigger response", Cause: err}
	}
	if triggerResp.SnapshotID == "" {
		return nil, &Error{Kind: KindTransient, Provider: a.name, Message: "trigger response carried no job id"}
	}

	return &JobHandle{Provider: a.name, JobID: triggerResp.SnapshotID, CreatedAt: time.Now()}, nil
}

// fetchStatus queries the snapshot endpoint once and decodes the outcome.
func (a *AsyncAdapter) fetchStatus(ctx context.Context, handle *JobHandle, cred *model.ApiCredential) (StatusResult, error) {
	endpoint := fmt.Sprintf("%s/datasets/v3/snapshot/%s?format=json", a.baseURL, handle.JobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return StatusResult{}, &Error{Kind: KindTransient, Provider: a.name, Message: "failed to build status request", Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+cred.Secret)

	resp, err := a.client.Do(req)
	if err != nil {
		return StatusResult{}, &Error{Kind: KindTransient, Provider: a.name, Message: "status request failed", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return StatusResult{}, &Error{Kind: KindTransient, Provider: a.name, Message: "failed to read status response", Cause: err}
	}

	return decodeSnapshot(a.name, resp.StatusCode, body)
}

// decodeSnapshot turns one raw status response into a tagged result. All
// knowledge of the provider's response shapes lives here: an in-progress
// marker, an error marker, or a ready object/sequence.
func decodeSnapshot(providerName string, status int, body []byte) (StatusResult, error) {
	switch {
	case status == http.StatusAccepted, status == http.StatusNotFound:
		// Not ready yet; a 404 means the snapshot has not materialized.
		return StatusResult{State: JobPending}, nil
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return StatusResult{}, &Error{Kind: KindAuthError, Provider: providerName, Message: fmt.Sprintf("status endpoint rejected credential (%d)", status)}
	case status < 200 || status > 299:
		return StatusResult{}, &Error{Kind: ClassifyStatus(status), Provider: providerName, Message: fmt.Sprintf("status endpoint returned %d", status)}
	}

	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return StatusResult{}, &Error{Kind: KindTransient, Provider: providerName, Message: "undecodable status body", Cause: err}
	}

	switch v := decoded.(type) {
	case []interface{}:
		if len(v) == 0 {
			return StatusResult{State: JobPending}, nil
		}
		if m, ok := v[0].(map[string]interface{}); ok && len(m) > 0 {
			return StatusResult{State: JobReady, Payload: m}, nil
		}
		return StatusResult{}, &Error{Kind: KindTransient, Provider: providerName, Message: "result set has unexpected element shape"}
	case map[string]interface{}:
		if state, ok := v["status"].(string); ok {
			switch strings.ToLower(state) {
			case "running", "pending", "building", "collecting", "starting":
				return StatusResult{State: JobPending}, nil
			case "failed", "error":
				reason := "unknown"
				if msg, ok := v["error"].(string); ok && msg != "" {
					reason = msg
				} else if msg, ok := v["message"].(string); ok && msg != "" {
					reason = msg
				}
				return StatusResult{State: JobFailed, Reason: reason}, nil
			case "ready", "done":
				switch data := v["data"].(type) {
				case []interface{}:
					if len(data) > 0 {
						if m, ok := data[0].(map[string]interface{}); ok && len(m) > 0 {
							return StatusResult{State: JobReady, Payload: m}, nil
						}
					}
					return StatusResult{State: JobPending}, nil
				case map[string]interface{}:
					if len(data) > 0 {
						return StatusResult{State: JobReady, Payload: data}, nil
					}
				}
				return StatusResult{State: JobPending}, nil
			}
		}
		if len(v) > 0 {
			return StatusResult{State: JobReady, Payload: v}, nil
		}
		return StatusResult{State: JobPending}, nil
	}
	return StatusResult{}, &Error{Kind: KindTransient, Provider: providerName, Message: "unexpected status body shape"}
}
