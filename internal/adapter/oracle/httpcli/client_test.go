package httpcli_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prradar/pipeline/internal/adapter/oracle/httpcli"
	"github.com/prradar/pipeline/internal/evaluate"
)

func TestOracle_Evaluate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"violates_rule": true,
			"score":         8,
			"comment":       "missing error check",
			"file_path":     "main.go",
			"line_number":   12,
		})
	}))
	defer srv.Close()

	oracle := httpcli.New(srv.URL, "Authorization", "Bearer test-key")
	eval, model, _, err := oracle.Evaluate(context.Background(), evaluate.Request{Model: "test-model", Prompt: "check this"})
	require.NoError(t, err)
	assert.Equal(t, "test-model", model)
	assert.True(t, eval.ViolatesRule)
	assert.Equal(t, 8, eval.Score)
	require.NotNil(t, eval.LineNumber)
	assert.Equal(t, 12, *eval.LineNumber)
}

func TestOracle_Evaluate_NonRetryableClientError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad prompt"}`))
	}))
	defer srv.Close()

	oracle := httpcli.New(srv.URL, "", "")
	_, _, _, err := oracle.Evaluate(context.Background(), evaluate.Request{Model: "m"})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
