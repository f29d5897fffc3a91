package httpcli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/evaluate"
)

// Oracle is a generic structured-output model oracle: one HTTP POST per
// task carrying the prompt and output schema, expecting back a JSON body
// decodable as domain.RuleEvaluation. BaseURL/AuthHeader/ExtraHeaders make
// it usable against Anthropic, OpenAI, or any compatible endpoint without
// a vendor-specific client, unlike the teacher's five parallel SDKs.
type Oracle struct {
	BaseURL      string
	AuthHeader   string
	AuthValue    string
	ExtraHeaders map[string]string
	HTTPClient   *http.Client
	Retry        RetryConfig
}

// New builds an Oracle with the teacher's default timeout/retry posture.
func New(baseURL, authHeader, authValue string) *Oracle {
	return &Oracle{
		BaseURL:    baseURL,
		AuthHeader: authHeader,
		AuthValue:  authValue,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Retry:      DefaultRetryConfig(),
	}
}

type apiRequest struct {
	Model        string         `json:"model"`
	Prompt       string         `json:"prompt"`
	OutputSchema map[string]any `json:"output_schema,omitempty"`
}

type apiResponse struct {
	ViolatesRule bool    `json:"violates_rule"`
	Score        int     `json:"score"`
	Comment      string  `json:"comment"`
	FilePath     string  `json:"file_path"`
	LineNumber   *int    `json:"line_number,omitempty"`
	CostUSD      float64 `json:"cost_usd,omitempty"`
}

// Evaluate implements evaluate.Oracle.
func (o *Oracle) Evaluate(ctx context.Context, req evaluate.Request) (domain.RuleEvaluation, string, *float64, error) {
	body, err := json.Marshal(apiRequest{Model: req.Model, Prompt: req.Prompt, OutputSchema: req.OutputSchema})
	if err != nil {
		return domain.RuleEvaluation{}, req.Model, nil, fmt.Errorf("marshal request: %w", err)
	}

	var parsed apiResponse
	err = retryWithBackoff(ctx, o.Retry, func(ctx context.Context) error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if o.AuthHeader != "" {
			httpReq.Header.Set(o.AuthHeader, o.AuthValue)
		}
		for k, v := range o.ExtraHeaders {
			httpReq.Header.Set(k, v)
		}

		resp, err := o.HTTPClient.Do(httpReq)
		if err != nil {
			return &RetryableError{Err: err, Retryable: true}
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return &RetryableError{Err: err, Retryable: true}
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return &RetryableError{Err: fmt.Errorf("oracle returned %d: %s", resp.StatusCode, respBody), Retryable: true}
		}
		if resp.StatusCode >= 400 {
			return &RetryableError{Err: fmt.Errorf("oracle returned %d: %s", resp.StatusCode, respBody), Retryable: false}
		}

		return json.Unmarshal(respBody, &parsed)
	})
	if err != nil {
		return domain.RuleEvaluation{}, req.Model, nil, err
	}

	var costUSD *float64
	if parsed.CostUSD != 0 {
		cost := parsed.CostUSD
		costUSD = &cost
	}

	return domain.RuleEvaluation{
		ViolatesRule: parsed.ViolatesRule,
		Score:        parsed.Score,
		Comment:      parsed.Comment,
		FilePath:     parsed.FilePath,
		LineNumber:   parsed.LineNumber,
	}, req.Model, costUSD, nil
}
