package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newTestGoogle(t *testing.T, tokenHandler, userinfoHandler http.HandlerFunc) *GoogleOAuth {
	t.Helper()

	tokenSrv := httptest.NewServer(tokenHandler)
	t.Cleanup(tokenSrv.Close)
	userinfoSrv := httptest.NewServer(userinfoHandler)
	t.Cleanup(userinfoSrv.Close)

	g := NewGoogleOAuth("client-id", "client-secret", "https://app.example.com/callback")
	g.tokenURL = tokenSrv.URL
	g.userinfoURL = userinfoSrv.URL
	return g
}

func TestGoogleOAuth_AuthCodeURL(t *testing.T) {
	g := NewGoogleOAuth("client-id", "client-secret", "https://app.example.com/callback")

	raw := g.AuthCodeURL("state-123")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse auth URL: %v", err)
	}

	q := u.Query()
	if q.Get("client_id") != "client-id" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("state") != "state-123" {
		t.Errorf("state = %q", q.Get("state"))
	}
	if q.Get("response_type") != "code" {
		t.Errorf("response_type = %q", q.Get("response_type"))
	}
	if !strings.Contains(q.Get("scope"), "email") {
		t.Errorf("scope = %q", q.Get("scope"))
	}
}

func TestGoogleOAuth_Exchange(t *testing.T) {
	g := newTestGoogle(t,
		func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Fatalf("parse form: %v", err)
			}
			if r.Form.Get("code") != "auth-code" {
				t.Errorf("code = %q", r.Form.Get("code"))
			}
			if r.Form.Get("grant_type") != "authorization_code" {
				t.Errorf("grant_type = %q", r.Form.Get("grant_type"))
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"at-123"}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer at-123" {
				t.Errorf("Authorization = %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"sub":"g-1","email":"jane@example.com","name":"Jane","picture":"https://img.example.com/j.png"}`))
		},
	)

	gu, err := g.Exchange(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}
	if gu.Sub != "g-1" || gu.Email != "jane@example.com" {
		t.Errorf("unexpected user: %+v", gu)
	}
}

func TestGoogleOAuth_ExchangeErrors(t *testing.T) {
	t.Run("token endpoint failure", func(t *testing.T) {
		g := newTestGoogle(t,
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
			func(w http.ResponseWriter, r *http.Request) {},
		)
		if _, err := g.Exchange(context.Background(), "bad-code"); err == nil {
			t.Error("expected error for failed token exchange")
		}
	})

	t.Run("missing access token", func(t *testing.T) {
		g := newTestGoogle(t,
			func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{}`))
			},
			func(w http.ResponseWriter, r *http.Request) {},
		)
		if _, err := g.Exchange(context.Background(), "code"); err == nil {
			t.Error("expected error for empty access token")
		}
	})

	t.Run("userinfo missing sub", func(t *testing.T) {
		g := newTestGoogle(t,
			func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"access_token":"at"}`))
			},
			func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"email":"x@example.com"}`))
			},
		)
		if _, err := g.Exchange(context.Background(), "code"); err == nil {
			t.Error("expected error for incomplete userinfo")
		}
	})
}
