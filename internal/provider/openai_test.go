package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIGenerate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var gotAuth string
		var gotReq chatRequest

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			json.NewDecoder(r.Body).Decode(&gotReq)

			json.NewEncoder(w).Encode(map[string]interface{}{
				"choices": []map[string]interface{}{
					{"message": map[string]string{"role": "assistant", "content": "Generated argument."}},
				},
			})
		}))
		defer server.Close()

		p := NewOpenAI(Config{BaseURL: server.URL, APIKey: "test-key", DefaultModel: "gpt-4o-mini"})

		got, err := p.Generate(context.Background(), "Make an argument.")
		if err != nil {
			t.Fatalf("failed: %v", err)
		}
		if got != "Generated argument." {
			t.Errorf("wrong response: %q", got)
		}
		if gotAuth != "Bearer test-key" {
			t.Errorf("wrong authorization header: %s", gotAuth)
		}
		if gotReq.Model != "gpt-4o-mini" {
			t.Errorf("wrong model: %s", gotReq.Model)
		}
		if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "Make an argument." {
			t.Errorf("wrong messages: %+v", gotReq.Messages)
		}
	})

	t.Run("APIError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{"message": "invalid key", "type": "invalid_request_error"},
			})
		}))
		defer server.Close()

		p := NewOpenAI(Config{BaseURL: server.URL, APIKey: "bad"})

		_, err := p.Generate(context.Background(), "prompt")
		if err == nil {
			t.Fatal("expected error")
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %T", err)
		}
		if apiErr.Provider != "openai" {
			t.Errorf("wrong provider: %s", apiErr.Provider)
		}
	})

	t.Run("EmptyChoices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
		}))
		defer server.Close()

		p := NewOpenAI(Config{BaseURL: server.URL, APIKey: "test-key"})
		if _, err := p.Generate(context.Background(), "prompt"); err == nil {
			t.Error("expected error for empty choices")
		}
	})
}
