package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaProvider_Suggest_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if req.Stream {
			t.Error("Expected non-streaming request")
		}
		if req.Model != "llama3.1" {
			t.Errorf("Expected model llama3.1, got %s", req.Model)
		}

		resp := ollamaResponse{
			Model:           "llama3.1",
			Response:        " Snack\n",
			Done:            true,
			PromptEvalCount: 10,
			EvalCount:       2,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{
		BaseURL: server.URL + "/",
		Model:   "llama3.1",
		Timeout: 5,
		Classes: []string{"Meal", "Snack", "Beverage"},
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Suggest(context.Background(), SuggestRequest{Food: "granola bar"})
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	if resp.Label != "Snack" {
		t.Errorf("Expected Snack, got %q", resp.Label)
	}
	if resp.TokensUsed != 12 {
		t.Errorf("Expected 12 tokens, got %d", resp.TokensUsed)
	}
}

func TestOllamaProvider_Suggest_RequiresModel(t *testing.T) {
	provider, _ := NewOllamaProvider(Config{BaseURL: "http://127.0.0.1:1"})
	_, err := provider.Suggest(context.Background(), SuggestRequest{Food: "x"})
	if err == nil || !strings.Contains(err.Error(), "model must be specified") {
		t.Errorf("Expected model error, got %v", err)
	}
}

func TestOllamaProvider_Suggest_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model 'nope' not found"}`))
	}))
	defer server.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL, Model: "nope"})
	_, err := provider.Suggest(context.Background(), SuggestRequest{Food: "x"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected error to mention not found, got %v", err)
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"models": []}`))
	}))
	defer server.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL})
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be available")
	}

	server.Close()
	if provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be unavailable after server shutdown")
	}
}
