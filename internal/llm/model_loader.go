package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ModelLoader loads models into the inference server via the /models/load endpoint.
type ModelLoader struct {
	baseURL     string
	client      *http.Client
	waitTimeout time.Duration
}

// NewModelLoader creates a new model loader.
func NewModelLoader(baseURL string) *ModelLoader {
	return &ModelLoader{
		baseURL:     baseURL,
		client:      newHTTPClient(),
		waitTimeout: 60 * time.Second,
	}
}

// LoadModelRequest represents the request payload for loading a model.
type LoadModelRequest struct {
	Model     string   `json:"model"`
	ExtraArgs []string `json:"extra_args,omitempty"`
}

// LoadModelResponse represents the response from the load model endpoint.
type LoadModelResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ModelStatus represents the status of a model from the /models endpoint.
type ModelStatus struct {
	ID      string `json:"id"`
	InCache bool   `json:"in_cache"`
	Status  struct {
		Value    string `json:"value"`
		ExitCode *int   `json:"exit_code,omitempty"`
		Failed   *bool  `json:"failed,omitempty"`
	} `json:"status"`
}

// ModelsResponse represents the response from the /models endpoint.
type ModelsResponse struct {
	Data []ModelStatus `json:"data"`
}

// IsModelLoaded checks if a model is already loaded (in cache) on the inference server.
func (ml *ModelLoader) IsModelLoaded(ctx context.Context, modelName string) (bool, error) {
	modelsURL := fmt.Sprintf("%s/models", ml.baseURL)
	statusReq, err := http.NewRequestWithContext(ctx, "GET", modelsURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create status request: %w", err)
	}

	statusResp, err := ml.client.Do(statusReq)
	if err != nil {
		return false, fmt.Errorf("failed to check model status: %w", err)
	}
	defer func() {
		_ = statusResp.Body.Close()
	}()

	if statusResp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(statusResp.Body)
		return false, fmt.Errorf("bad status %d: %s", statusResp.StatusCode, string(raw))
	}

	var modelsResp ModelsResponse
	if err := json.NewDecoder(statusResp.Body).Decode(&modelsResp); err != nil {
		return false, fmt.Errorf("failed to decode models response: %w", err)
	}

	// Find our model
	for _, model := range modelsResp.Data {
		if model.ID == modelName {
			return model.InCache, nil
		}
	}

	// Model not found in the list
	return false, nil
}

// LoadModel loads a model into the inference server with optional extra arguments.
// It checks if the model is already loaded first, and only loads if not in cache.
// It waits for the model to actually load and verifies it's in cache before returning.
func (ml *ModelLoader) LoadModel(ctx context.Context, modelName string, extraArgs []string) error {
	// If we can't check status, proceed with the load attempt anyway
	loaded, err := ml.IsModelLoaded(ctx, modelName)
	if err == nil && loaded {
		return nil
	}

	url := fmt.Sprintf("%s/models/load", ml.baseURL)

	payload := LoadModelRequest{
		Model:     modelName,
		ExtraArgs: extraArgs,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := ml.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var loadResp LoadModelResponse
	if err := json.NewDecoder(resp.Body).Decode(&loadResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !loadResp.Success {
		return fmt.Errorf("model load failed: %s", loadResp.Error)
	}

	return ml.waitForModel(ctx, modelName)
}

// waitForModel polls the /models endpoint until the model is in cache.
// /models/load returns success immediately, but the actual loading happens
// asynchronously and may still fail, so we poll with exponential backoff
// until the model is cached, the load fails, or the wait timeout elapses.
func (ml *ModelLoader) waitForModel(ctx context.Context, modelName string) error {
	errStillLoading := fmt.Errorf("model %s is still loading", modelName)

	check := func() error {
		models, err := ml.listModels(ctx)
		if err != nil {
			// Transient status errors count as "still loading"
			return errStillLoading
		}

		for _, model := range models {
			if model.ID != modelName {
				continue
			}
			if model.InCache {
				return nil
			}
			if model.Status.Failed != nil && *model.Status.Failed {
				exitCode := 0
				if model.Status.ExitCode != nil {
					exitCode = *model.Status.ExitCode
				}
				return backoff.Permanent(fmt.Errorf("model load failed with exit code %d", exitCode))
			}
			break
		}
		return errStillLoading
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	policy.MaxElapsedTime = ml.waitTimeout

	if err := backoff.Retry(check, backoff.WithContext(policy, ctx)); err != nil {
		if err == errStillLoading {
			return fmt.Errorf("model did not load within timeout period")
		}
		return err
	}
	return nil
}

// listModels fetches the current model statuses from the inference server.
func (ml *ModelLoader) listModels(ctx context.Context) ([]ModelStatus, error) {
	modelsURL := fmt.Sprintf("%s/models", ml.baseURL)
	req, err := http.NewRequestWithContext(ctx, "GET", modelsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}

	resp, err := ml.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to check model status: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var modelsResp ModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&modelsResp); err != nil {
		return nil, fmt.Errorf("failed to decode models response: %w", err)
	}

	return modelsResp.Data, nil
}
