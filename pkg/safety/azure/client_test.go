package azure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnalyzeTextParsesCategories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Ocp-Apim-Subscription-Key") != "test-key" {
			t.Errorf("missing subscription key header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"categoriesAnalysis":[
			{"category":"Hate","severity":0},
			{"category":"Sexual","severity":2},
			{"category":"Violence","severity":1},
			{"category":"SelfHarm","severity":0}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	scores, err := client.AnalyzeText(context.Background(), "some text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]int{"hate": 0, "sexual": 2, "violence": 1, "self_harm": 0}
	for category, severity := range want {
		if scores[category] != severity {
			t.Errorf("scores[%q] = %d, want %d", category, scores[category], severity)
		}
	}
}

func TestAnalyzeTextFailsOnMissingCredentials(t *testing.T) {
	client := NewClient("", "")
	if _, err := client.AnalyzeText(context.Background(), "text"); err == nil {
		t.Error("expected error with empty credentials, got nil")
	}
}

func TestAnalyzeTextFailsOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"Unauthorized"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key")
	if _, err := client.AnalyzeText(context.Background(), "text"); err == nil {
		t.Error("expected error on 401 response, got nil")
	}
}
