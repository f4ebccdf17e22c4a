package aggregate

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/virtualcard/internal/aggregate/ratelimit"
	"github.com/Dan9191/virtualcard/internal/models"
)

func newHandlerServer(t *testing.T, mesh *fakeMesh, limiter *ratelimit.Limiter) *httptest.Server {
	t.Helper()
	r := mux.NewRouter()
	NewHandler(newTestService(t, mesh, limiter), nil).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestBalanceOperationEndpoint(t *testing.T) {
	mesh := newFakeMesh(twoCards()...)
	srv := newHandlerServer(t, mesh, ratelimit.New(5))

	body := `{"senderCardNumber":"1111","recipientCardNumber":"2222","amount":"50","type":"TRANSFER"}`
	resp := postJSON(t, srv.URL+"/cards-aggregate/balanceOperation", body)
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want 201", resp.StatusCode)
	}
	if len(mesh.transactions) != 1 {
		t.Errorf("got %d ledger entries, want 1", len(mesh.transactions))
	}
}

func TestBalanceOperationEndpointStatuses(t *testing.T) {
	mesh := newFakeMesh(twoCards()...)
	srv := newHandlerServer(t, mesh, ratelimit.New(5))

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{`, http.StatusUnprocessableEntity},
		{"missing cards", `{"amount":"50","type":"TRANSFER"}`, http.StatusUnprocessableEntity},
		{"unknown sender", `{"senderCardNumber":"9999","recipientCardNumber":"2222","amount":"50","type":"TRANSFER"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/cards-aggregate/balanceOperation", tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestRateLimitedResponseIsPlainText(t *testing.T) {
	mesh := newFakeMesh(twoCards()...)
	limiter := ratelimit.New(1)
	limiter.Allow("1111")
	limiter.Allow("1111")
	srv := newHandlerServer(t, mesh, limiter)

	body := `{"senderCardNumber":"1111","recipientCardNumber":"2222","amount":"50","type":"TRANSFER"}`
	resp := postJSON(t, srv.URL+"/cards-aggregate/balanceOperation", body)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	got := strings.TrimSpace(string(raw))
	if want := "Max 5 spends per minute exceeded for card 1111"; got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "application/json") {
		t.Errorf("rate-limit body must be plain text, got Content-Type %q", ct)
	}
}

func TestSpendEndpoint(t *testing.T) {
	mesh := newFakeMesh(models.Card{
		ID: 1, Code: "1111", Status: models.CardStatusActive, Balance: decimal.NewFromInt(100),
	})
	srv := newHandlerServer(t, mesh, ratelimit.New(5))

	// The amount travels as a raw decimal body, optionally quoted.
	resp := postJSON(t, srv.URL+"/cards-aggregate/1111/spend", `"30"`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if got := strings.TrimSpace(string(raw)); got != `"70"` {
		t.Errorf("body = %s, want the new balance \"70\"", got)
	}

	resp = postJSON(t, srv.URL+"/cards-aggregate/1111/topup", "5")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("topup status = %d, want 201", resp.StatusCode)
	}
	raw, _ = io.ReadAll(resp.Body)
	if got := strings.TrimSpace(string(raw)); got != `"75"` {
		t.Errorf("topup body = %s, want the new balance \"75\"", got)
	}

	resp = postJSON(t, srv.URL+"/cards-aggregate/1111/spend", "not-a-number")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422 for a malformed amount", resp.StatusCode)
	}
}
