// Package static provides a fixture model oracle for tests and offline
// runs: responses are canned ahead of time rather than fetched from a
// live model endpoint.
package static

import (
	"context"
	"fmt"
	"sync"

	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/evaluate"
)

// Responder returns the canned evaluation for one request, or an error to
// simulate an oracle failure.
type Responder func(req evaluate.Request) (domain.RuleEvaluation, error)

// Oracle is a deterministic evaluate.Oracle backed by a Responder.
type Oracle struct {
	mu        sync.Mutex
	respond   Responder
	model     string
	callCount int
}

// New builds a static oracle. model is reported as ModelUsed on every
// result, mirroring what a real adapter would echo back from the API
// response.
func New(model string, respond Responder) *Oracle {
	return &Oracle{respond: respond, model: model}
}

// Evaluate implements evaluate.Oracle.
func (o *Oracle) Evaluate(_ context.Context, req evaluate.Request) (domain.RuleEvaluation, string, *float64, error) {
	o.mu.Lock()
	o.callCount++
	o.mu.Unlock()

	eval, err := o.respond(req)
	if err != nil {
		return domain.RuleEvaluation{}, o.model, nil, err
	}
	return eval, o.model, nil, nil
}

// CallCount returns how many times Evaluate has been invoked.
func (o *Oracle) CallCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.callCount
}

// Clean is a Responder that always reports no violation.
func Clean(req evaluate.Request) (domain.RuleEvaluation, error) {
	return domain.RuleEvaluation{
		ViolatesRule: false,
		Score:        0,
		Comment:      fmt.Sprintf("no issues found in %s", req.FilePath),
		FilePath:     req.FilePath,
	}, nil
}
