package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/waxlog/waxlog/internal/handler/dto"
)

// stubAIClient returns canned text or a fixed error.
type stubAIClient struct {
	text string
	err  error
}

func (s *stubAIClient) Discover(ctx context.Context, prompt string) (string, error) {
	return s.text, s.err
}

func (s *stubAIClient) AlbumInsight(ctx context.Context, artist, title string) (string, error) {
	return s.text, s.err
}

func (s *stubAIClient) PolishReview(ctx context.Context, text string) (string, error) {
	return s.text, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func doAIRequest(t *testing.T, h *AIHandler, handle http.HandlerFunc, body string) (*httptest.ResponseRecorder, dto.AIResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handle(rec, req)

	var resp dto.AIResponse
	if rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return rec, resp
}

func TestAIHandler_Discover(t *testing.T) {
	h := NewAIHandler(testLogger(), &stubAIClient{text: "Try Alice Coltrane's Journey in Satchidananda."})

	rec, resp := doAIRequest(t, h, h.Discover, `{"prompt":"spiritual jazz for late nights"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !resp.Available {
		t.Error("expected available response")
	}
	if resp.Text == "" {
		t.Error("expected generated text")
	}
}

func TestAIHandler_NilClientDegrades(t *testing.T) {
	h := NewAIHandler(testLogger(), nil)

	rec, resp := doAIRequest(t, h, h.Discover, `{"prompt":"anything"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Available {
		t.Error("unconfigured backend should report available=false")
	}
}

func TestAIHandler_BackendErrorDegrades(t *testing.T) {
	h := NewAIHandler(testLogger(), &stubAIClient{err: errors.New("upstream 503")})

	rec, resp := doAIRequest(t, h, h.PolishReview, `{"text":"this record is good i liked it"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Available {
		t.Error("failing backend should report available=false")
	}
	if resp.Text != "" {
		t.Errorf("expected empty text on failure, got %q", resp.Text)
	}
}

func TestAIHandler_AlbumInsightValidation(t *testing.T) {
	h := NewAIHandler(testLogger(), &stubAIClient{text: "notes"})

	rec, _ := doAIRequest(t, h, h.AlbumInsight, `{"artist":"Can"}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}
