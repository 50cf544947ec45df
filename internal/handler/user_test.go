package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/waxlog/waxlog/internal/auth"
	"github.com/waxlog/waxlog/internal/model"
)

// Recommendations are served to signed-out browsers too; the viewer ID is
// only used to keep the caller out of their own suggestions.
func TestViewerID(t *testing.T) {
	anon := httptest.NewRequest(http.MethodGet, "/api/v1/users/recommended", nil)
	if got := viewerID(anon); got != "" {
		t.Errorf("viewerID for anonymous request = %q, want empty", got)
	}

	authed := anon.WithContext(auth.ContextWithAuth(anon.Context(), &model.AuthContext{UserID: "user-1"}))
	if got := viewerID(authed); got != "user-1" {
		t.Errorf("viewerID for authed request = %q, want user-1", got)
	}
}
