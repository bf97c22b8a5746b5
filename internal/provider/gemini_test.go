package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGeminiGenerate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var gotPath, gotKey string
		var gotReq geminiRequest

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.Header.Get("x-goog-api-key")
			json.NewDecoder(r.Body).Decode(&gotReq)

			json.NewEncoder(w).Encode(map[string]interface{}{
				"candidates": []map[string]interface{}{
					{"content": map[string]interface{}{
						"parts": []map[string]string{{"text": "Generated argument."}},
					}},
				},
			})
		}))
		defer server.Close()

		p := NewGemini(Config{BaseURL: server.URL, APIKey: "test-key", DefaultModel: "gemini-2.0-flash", Temperature: 0.7})

		got, err := p.Generate(context.Background(), "Make an argument.")
		if err != nil {
			t.Fatalf("failed: %v", err)
		}
		if got != "Generated argument." {
			t.Errorf("wrong response: %q", got)
		}
		if gotPath != "/models/gemini-2.0-flash:generateContent" {
			t.Errorf("wrong path: %s", gotPath)
		}
		if gotKey != "test-key" {
			t.Errorf("wrong api key header: %s", gotKey)
		}
		if len(gotReq.Contents) != 1 || gotReq.Contents[0].Parts[0].Text != "Make an argument." {
			t.Errorf("wrong request payload: %+v", gotReq)
		}
	})

	t.Run("APIError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{"code": 429, "message": "quota exceeded", "status": "RESOURCE_EXHAUSTED"},
			})
		}))
		defer server.Close()

		p := NewGemini(Config{BaseURL: server.URL, APIKey: "test-key"})

		_, err := p.Generate(context.Background(), "prompt")
		if err == nil {
			t.Fatal("expected error")
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %T", err)
		}
		if apiErr.StatusCode != http.StatusTooManyRequests {
			t.Errorf("wrong status code: %d", apiErr.StatusCode)
		}
	})

	t.Run("EmptyCandidates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
		}))
		defer server.Close()

		p := NewGemini(Config{BaseURL: server.URL, APIKey: "test-key"})
		if _, err := p.Generate(context.Background(), "prompt"); err == nil {
			t.Error("expected error for empty candidates")
		}
	})

	t.Run("ModelOverride", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			json.NewEncoder(w).Encode(map[string]interface{}{
				"candidates": []map[string]interface{}{
					{"content": map[string]interface{}{"parts": []map[string]string{{"text": "ok"}}}},
				},
			})
		}))
		defer server.Close()

		p := NewGemini(Config{BaseURL: server.URL, APIKey: "test-key", DefaultModel: "gemini-2.0-flash"})
		if _, err := p.GenerateWithModel(context.Background(), "prompt", "gemini-1.5-pro"); err != nil {
			t.Fatalf("failed: %v", err)
		}
		if gotPath != "/models/gemini-1.5-pro:generateContent" {
			t.Errorf("wrong path: %s", gotPath)
		}
	})
}

func TestGeminiAvailable(t *testing.T) {
	if NewGemini(Config{}).Available() {
		t.Error("provider without key should not be available")
	}
	if !NewGemini(Config{APIKey: "k"}).Available() {
		t.Error("provider with key should be available")
	}
}
