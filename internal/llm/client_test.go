package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"

	"mousebot/internal/domain"
	"mousebot/internal/domain/models"
)

func TestClient_Chat(t *testing.T) {
	var gotAuth string
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path

		var payload chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if payload.Model != "test-model" {
			t.Errorf("model = %q", payload.Model)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "answer"}},
			},
			"usage": map[string]int{"prompt_tokens": 7, "completion_tokens": 3, "total_tokens": 10},
		})
	}))
	defer server.Close()

	client := New(server.URL+"/", "key-1")
	messages := []models.ChatMessage{{Role: models.RoleUser, Content: "question"}}

	result, err := client.Chat(context.Background(), "test-model", messages)
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if result.Content != "answer" {
		t.Errorf("content = %q", result.Content)
	}
	if result.Usage.TotalTokens != 10 {
		t.Errorf("total tokens = %d", result.Usage.TotalTokens)
	}
	if len(result.Raw) == 0 {
		t.Error("raw response must be preserved")
	}
	if gotAuth != "Bearer key-1" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("path = %q, trailing base slash must be trimmed", gotPath)
	}
}

func TestClient_ChatUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "bad api key", "type": "auth"},
		})
	}))
	defer server.Close()

	_, err := New(server.URL, "bad-key").Chat(context.Background(), "m", nil)
	if err == nil {
		t.Fatal("expected upstream error")
	}
}

func TestClient_ChatEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	_, err := New(server.URL, "k").Chat(context.Background(), "m", nil)
	if err == nil {
		t.Fatal("expected error on empty choices")
	}
}

func TestClient_ListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"id": "model-a"}, {"id": "model-b"}},
		})
	}))
	defer server.Close()

	ids, err := New(server.URL, "k").ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if want := []string{"model-a", "model-b"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

type stubModelRepo struct {
	cfg   *models.ModelConfig
	calls atomic.Int32
}

func (r *stubModelRepo) Save(ctx context.Context, cfg *models.ModelConfig) (*models.ModelConfig, error) {
	return cfg, nil
}

func (r *stubModelRepo) GetByID(ctx context.Context, id string) (*models.ModelConfig, error) {
	r.calls.Add(1)
	if r.cfg == nil || r.cfg.ID != id {
		return nil, domain.ErrNotFound
	}
	return r.cfg, nil
}

func (r *stubModelRepo) List(ctx context.Context) ([]models.ModelConfig, error) { return nil, nil }
func (r *stubModelRepo) Delete(ctx context.Context, id string) error            { return nil }

func TestRegistry_CachesClients(t *testing.T) {
	repo := &stubModelRepo{cfg: &models.ModelConfig{
		ID:      "model-1",
		BaseURL: "https://api.example.com/v1",
		APIKey:  "k",
	}}
	registry := NewRegistry(repo)

	first, err := registry.ClientFor(context.Background(), "model-1")
	if err != nil {
		t.Fatalf("ClientFor failed: %v", err)
	}
	second, err := registry.ClientFor(context.Background(), "model-1")
	if err != nil {
		t.Fatalf("ClientFor failed: %v", err)
	}

	if first != second {
		t.Error("expected the cached client on the second lookup")
	}
	if got := repo.calls.Load(); got != 1 {
		t.Errorf("storage lookups = %d, want 1", got)
	}
}

func TestRegistry_UnknownOrEmptyModel(t *testing.T) {
	registry := NewRegistry(&stubModelRepo{})

	if _, err := registry.ClientFor(context.Background(), "missing"); err == nil {
		t.Error("expected error for unknown model id")
	}
	if _, err := registry.ClientFor(context.Background(), ""); err == nil {
		t.Error("expected error for empty model id")
	}
}
