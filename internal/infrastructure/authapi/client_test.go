package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hospital-ms/hms-portal/internal/core/domain"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/"})
}

func TestClient_LoginSuccess(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["email"] != "doctor@hms.com" || body["password"] != "doctor123" {
			t.Fatalf("unexpected body %v", body)
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"token":"abc123","user":{"id":3,"email":"doctor@hms.com","role":"DOCTOR","is_active":true}}}`))
	})

	res, err := client.Login(context.Background(), "doctor@hms.com", "doctor123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	want := domain.User{ID: 3, Email: "doctor@hms.com", Role: domain.RoleDoctor, IsActive: true}
	if res.Token != "abc123" || *res.User != want {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestClient_LoginRejected(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"error":"Invalid credentials"}`))
	})

	_, err := client.Login(context.Background(), "doctor@hms.com", "wrong")
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) || authErr.Kind != domain.KindCredentials {
		t.Fatalf("expected credentials AuthError, got %v", err)
	}
	if err.Error() != "Invalid credentials" {
		t.Fatalf("expected backend message, got %q", err.Error())
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	client := NewClient(Config{BaseURL: url})

	_, err := client.Login(context.Background(), "doctor@hms.com", "doctor123")
	if !errors.Is(err, domain.ErrConnectivity) {
		t.Fatalf("expected connectivity error, got %v", err)
	}
	if err.Error() != domain.ErrConnectivity.Error() {
		t.Fatalf("connectivity errors should carry the generic message, got %q", err.Error())
	}
}

func TestClient_ServerErrorIsConnectivity(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	if _, err := client.Refresh(context.Background(), "abc123"); !errors.Is(err, domain.ErrConnectivity) {
		t.Fatalf("expected connectivity error, got %v", err)
	}
}

func TestClient_MalformedSuccessIsProtocolError(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"token":""}}`))
	})

	if _, err := client.Login(context.Background(), "a@hms.com", "pw"); !errors.Is(err, domain.ErrProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
}

func TestClient_RefreshSendsBearer(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/refresh" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer abc123" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"token":"def456"}}`))
	})

	tok, err := client.Refresh(context.Background(), "abc123")
	if err != nil || tok != "def456" {
		t.Fatalf("unexpected refresh result %q err=%v", tok, err)
	}
}

func TestClient_Logout(t *testing.T) {
	calls := 0
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/auth/logout" || r.Header.Get("Authorization") != "Bearer abc123" {
			t.Fatalf("unexpected logout request %s %q", r.URL.Path, r.Header.Get("Authorization"))
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	if err := client.Logout(context.Background(), "abc123"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}
