package control

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vietddude/fridgechef/internal/api"
	"github.com/vietddude/fridgechef/internal/core/config"
	"github.com/vietddude/fridgechef/internal/core/domain"
)

// fakeModel answers generateContent calls, failing the first n with 503.
func fakeModel(t *testing.T, failFirst int32, text string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if !strings.HasSuffix(r.URL.Path, ":generateContent") || r.URL.Query().Get("key") != "test-key" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if n <= failFirst {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded"}}`))
			return
		}
		resp := map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": text}}},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testConfig(baseURL string) *config.AppConfig {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.GenAI.APIKey = "test-key"
	cfg.GenAI.BaseURL = baseURL
	cfg.GenAI.InitialDelay = time.Millisecond
	return cfg
}

func TestApp_Lifecycle(t *testing.T) {
	model, _ := fakeModel(t, 0, "[]")
	app, err := NewApp(context.Background(), testConfig(model.URL))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if err := app.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestApp_RequiresAPIKey(t *testing.T) {
	t.Setenv(config.APIKeyEnv, "")
	cfg := config.Default()
	if _, err := NewApp(context.Background(), cfg); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestApp_GenerateRetriesThroughStack(t *testing.T) {
	reply := `[{"title":"Egg fried rice","ingredients":[{"name":"rice"},{"name":"egg"}],"steps":["fry"]}]`
	model, calls := fakeModel(t, 2, reply)

	app, err := NewApp(context.Background(), testConfig(model.URL))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer app.Close()

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	body, _ := json.Marshal(map[string]any{
		"ingredients": []domain.Ingredient{{Name: "rice"}, {Name: "egg"}},
	})
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/recipes/generate", bytes.NewReader(body))
	req.Header.Set(api.UserHeader, "u1")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(calls); got != 3 {
		t.Errorf("expected 3 model attempts, got %d", got)
	}

	var parsed struct {
		Recipes []domain.Recipe `json:"recipes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(parsed.Recipes) != 1 || parsed.Recipes[0].Title != "Egg fried rice" {
		t.Errorf("unexpected recipes %+v", parsed.Recipes)
	}
}

func TestApp_ExhaustedRetriesReturn503(t *testing.T) {
	model, calls := fakeModel(t, 100, "")

	app, err := NewApp(context.Background(), testConfig(model.URL))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer app.Close()

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/recipes/generate",
		strings.NewReader(`{"ingredients":[{"name":"rice"}]}`))
	req.Header.Set(api.UserHeader, "u1")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(calls); got != 3 {
		t.Errorf("expected default budget of 3 attempts, got %d", got)
	}
}
