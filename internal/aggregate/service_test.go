package aggregate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/virtualcard/internal/aggregate/ratelimit"
	"github.com/Dan9191/virtualcard/internal/apperr"
	"github.com/Dan9191/virtualcard/internal/httputil"
	"github.com/Dan9191/virtualcard/internal/integrations/cardapi"
	"github.com/Dan9191/virtualcard/internal/integrations/txapi"
	"github.com/Dan9191/virtualcard/internal/models"
)

type balanceUpdate struct {
	cardID     int64
	newBalance decimal.Decimal
}

// fakeMesh stands in for the card and transaction services.
type fakeMesh struct {
	mu           sync.Mutex
	cards        map[string]*models.Card
	updates      []balanceUpdate
	transactions []models.CreateTransactionRequest
	failUpdateID int64 // respond 500 to balance updates of this card
	hits         int
}

func newFakeMesh(cards ...models.Card) *fakeMesh {
	m := &fakeMesh{cards: make(map[string]*models.Card)}
	for i := range cards {
		m.cards[cards[i].Code] = &cards[i]
	}
	return m
}

func (m *fakeMesh) cardByID(id int64) *models.Card {
	for _, c := range m.cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (m *fakeMesh) cardServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/cards/covered/{code}", func(w http.ResponseWriter, req *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.hits++
		amount, err := decimal.NewFromString(req.URL.Query().Get("amount"))
		if err != nil {
			httputil.RespondError(w, apperr.InvalidInputf("invalid amount"))
			return
		}
		card, ok := m.cards[mux.Vars(req)["code"]]
		if !ok || card.Status == models.CardStatusBlocked || card.Balance.Cmp(amount) < 0 {
			httputil.RespondError(w, apperr.NotFoundf("card not found"))
			return
		}
		httputil.RespondJSON(w, http.StatusOK, card)
	}).Methods("GET")
	r.HandleFunc("/cards/{code}", func(w http.ResponseWriter, req *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.hits++
		card, ok := m.cards[mux.Vars(req)["code"]]
		if !ok || card.Status == models.CardStatusBlocked {
			httputil.RespondError(w, apperr.NotFoundf("card not found"))
			return
		}
		httputil.RespondJSON(w, http.StatusOK, card)
	}).Methods("GET")
	r.HandleFunc("/cards/{id}/updateBalance", func(w http.ResponseWriter, req *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.hits++
		id, _ := strconv.ParseInt(mux.Vars(req)["id"], 10, 64)
		if id == m.failUpdateID {
			http.Error(w, "database unavailable", http.StatusInternalServerError)
			return
		}
		var body models.UpdateBalanceRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			httputil.RespondError(w, apperr.InvalidInputf("invalid body"))
			return
		}
		m.updates = append(m.updates, balanceUpdate{cardID: id, newBalance: body.NewBalance})
		if card := m.cardByID(id); card != nil {
			card.Balance = body.NewBalance
		}
		w.WriteHeader(http.StatusNoContent)
	}).Methods("PUT")

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func (m *fakeMesh) txServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/transactions", func(w http.ResponseWriter, req *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		var body models.CreateTransactionRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			httputil.RespondError(w, apperr.InvalidInputf("invalid body"))
			return
		}
		m.transactions = append(m.transactions, body)
		httputil.RespondJSON(w, http.StatusCreated, models.Transaction{
			ID: int64(len(m.transactions)), Code: "tx-code", Amount: body.Amount, Type: body.Type,
		})
	}).Methods("POST")

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(t *testing.T, mesh *fakeMesh, limiter *ratelimit.Limiter) *Service {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	cards := cardapi.NewClient(mesh.cardServer(t).URL, log)
	transactions := txapi.NewClient(mesh.txServer(t).URL, log)
	return NewService(cards, transactions, limiter, nil, log, 5)
}

func transferRequest(amount int64) models.BalanceOperationRequest {
	return models.BalanceOperationRequest{
		SenderCardNumber:    "1111",
		RecipientCardNumber: "2222",
		Amount:              decimal.NewFromInt(amount),
		Type:                models.TransactionTypeTransfer,
	}
}

func twoCards() []models.Card {
	return []models.Card{
		{ID: 1, Code: "1111", Status: models.CardStatusActive, Balance: decimal.NewFromInt(100)},
		{ID: 2, Code: "2222", Status: models.CardStatusActive, Balance: decimal.NewFromInt(200)},
	}
}

func TestBalanceOperationHappyPath(t *testing.T) {
	mesh := newFakeMesh(twoCards()...)
	svc := newTestService(t, mesh, ratelimit.New(5))

	if err := svc.BalanceOperation(context.Background(), transferRequest(50)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mesh.updates) != 2 {
		t.Fatalf("got %d balance updates, want 2", len(mesh.updates))
	}
	// Writes are strictly ordered: sender first, then recipient.
	if mesh.updates[0].cardID != 1 || !mesh.updates[0].newBalance.Equal(decimal.NewFromInt(50)) {
		t.Errorf("first write = card %d balance %s, want card 1 balance 50",
			mesh.updates[0].cardID, mesh.updates[0].newBalance)
	}
	if mesh.updates[1].cardID != 2 || !mesh.updates[1].newBalance.Equal(decimal.NewFromInt(250)) {
		t.Errorf("second write = card %d balance %s, want card 2 balance 250",
			mesh.updates[1].cardID, mesh.updates[1].newBalance)
	}

	if len(mesh.transactions) != 1 {
		t.Fatalf("got %d ledger entries, want exactly 1", len(mesh.transactions))
	}
	tx := mesh.transactions[0]
	if tx.SenderCardID == nil || *tx.SenderCardID != 1 ||
		tx.RecipientCardID == nil || *tx.RecipientCardID != 2 {
		t.Error("ledger entry must reference both card ids")
	}
	if !tx.Amount.Equal(decimal.NewFromInt(50)) || tx.Type != models.TransactionTypeTransfer {
		t.Errorf("ledger entry amount=%s type=%s, want 50/TRANSFER", tx.Amount, tx.Type)
	}
}

func TestBalanceOperationSenderFailuresCollapse(t *testing.T) {
	tests := []struct {
		name  string
		cards []models.Card
	}{
		{"sender missing", []models.Card{
			{ID: 2, Code: "2222", Status: models.CardStatusActive, Balance: decimal.NewFromInt(200)},
		}},
		{"sender blocked", []models.Card{
			{ID: 1, Code: "1111", Status: models.CardStatusBlocked, Balance: decimal.NewFromInt(100)},
			{ID: 2, Code: "2222", Status: models.CardStatusActive, Balance: decimal.NewFromInt(200)},
		}},
		{"insufficient balance", []models.Card{
			{ID: 1, Code: "1111", Status: models.CardStatusActive, Balance: decimal.NewFromInt(10)},
			{ID: 2, Code: "2222", Status: models.CardStatusActive, Balance: decimal.NewFromInt(200)},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh := newFakeMesh(tt.cards...)
			svc := newTestService(t, mesh, ratelimit.New(5))

			err := svc.BalanceOperation(context.Background(), transferRequest(50))
			if !apperr.IsKind(err, apperr.NotFound) {
				t.Fatalf("expected NotFound, got %v", err)
			}
			// The three causes are indistinguishable at this boundary.
			want := "Sender card number: 1111 not found, blocked or insufficient balance"
			if err.Error() != want {
				t.Errorf("message = %q, want %q", err.Error(), want)
			}
			if len(mesh.updates) != 0 || len(mesh.transactions) != 0 {
				t.Error("no write may be issued when the fetch fails")
			}
		})
	}
}

func TestBalanceOperationRecipientNotFound(t *testing.T) {
	mesh := newFakeMesh(models.Card{
		ID: 1, Code: "1111", Status: models.CardStatusActive, Balance: decimal.NewFromInt(100),
	})
	svc := newTestService(t, mesh, ratelimit.New(5))

	err := svc.BalanceOperation(context.Background(), transferRequest(50))
	if !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if want := "Recipient card number: 2222 not found"; err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestBalanceOperationMidSequenceFailure(t *testing.T) {
	mesh := newFakeMesh(twoCards()...)
	mesh.failUpdateID = 2 // recipient leg fails with a 500
	limiter := ratelimit.New(1)
	svc := newTestService(t, mesh, limiter)

	err := svc.BalanceOperation(context.Background(), transferRequest(50))
	if !apperr.IsKind(err, apperr.Unexpected) {
		t.Fatalf("expected the 500 to propagate unchanged, got %v", err)
	}
	if apperr.HTTPStatus(err) != http.StatusInternalServerError {
		t.Errorf("status = %d, want the peer's 500", apperr.HTTPStatus(err))
	}

	if len(mesh.transactions) != 0 {
		t.Error("no ledger entry may be created when a balance write fails")
	}
	// The failed attempt must not consume rate-limit budget.
	if !limiter.Allow("1111") {
		t.Error("expected the spend counter to be rolled back on failure")
	}
}

func TestBalanceOperationRateLimited(t *testing.T) {
	mesh := newFakeMesh(twoCards()...)
	limiter := ratelimit.New(1)
	svc := newTestService(t, mesh, limiter)

	if err := svc.BalanceOperation(context.Background(), transferRequest(10)); err != nil {
		t.Fatalf("first transfer should pass: %v", err)
	}
	hitsAfterFirst := mesh.hits

	err := svc.BalanceOperation(context.Background(), transferRequest(10))
	if !apperr.IsKind(err, apperr.RateLimited) {
		t.Fatalf("expected RateLimited, got %v", err)
	}
	if mesh.hits != hitsAfterFirst {
		t.Error("a rate-limited request must not issue any network call")
	}
}

func TestBalanceOperationRejectsBadInput(t *testing.T) {
	mesh := newFakeMesh(twoCards()...)
	svc := newTestService(t, mesh, ratelimit.New(5))

	err := svc.BalanceOperation(context.Background(), transferRequest(-10))
	if !apperr.IsKind(err, apperr.InvalidInput) {
		t.Errorf("expected InvalidInput for negative amount, got %v", err)
	}
	err = svc.BalanceOperation(context.Background(), models.BalanceOperationRequest{Amount: decimal.NewFromInt(10)})
	if !apperr.IsKind(err, apperr.InvalidInput) {
		t.Errorf("expected InvalidInput for missing card numbers, got %v", err)
	}
	if mesh.hits != 0 {
		t.Error("invalid requests must be rejected before any network call")
	}
}

func TestSpend(t *testing.T) {
	mesh := newFakeMesh(models.Card{
		ID: 1, Code: "1111", Status: models.CardStatusActive, Balance: decimal.NewFromInt(100),
	})
	svc := newTestService(t, mesh, ratelimit.New(5))

	newBalance, err := svc.Spend(context.Background(), "1111", decimal.NewFromInt(30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !newBalance.Equal(decimal.NewFromInt(70)) {
		t.Errorf("new balance = %s, want 70", newBalance)
	}
	if len(mesh.transactions) != 1 || mesh.transactions[0].Type != models.TransactionTypeSpend {
		t.Fatal("expected a single SPEND ledger entry")
	}
	if mesh.transactions[0].SenderCardID == nil || *mesh.transactions[0].SenderCardID != 1 {
		t.Error("a spend entry records the card on the sender leg")
	}
}

func TestSpendIsRateLimited(t *testing.T) {
	mesh := newFakeMesh(models.Card{
		ID: 1, Code: "1111", Status: models.CardStatusActive, Balance: decimal.NewFromInt(100),
	})
	limiter := ratelimit.New(1)
	svc := newTestService(t, mesh, limiter)

	if _, err := svc.Spend(context.Background(), "1111", decimal.NewFromInt(1)); err != nil {
		t.Fatalf("first spend should pass: %v", err)
	}
	if _, err := svc.Spend(context.Background(), "1111", decimal.NewFromInt(1)); !apperr.IsKind(err, apperr.RateLimited) {
		t.Errorf("expected RateLimited on second spend, got %v", err)
	}
}

func TestTopupIsNotRateLimited(t *testing.T) {
	mesh := newFakeMesh(models.Card{
		ID: 1, Code: "1111", Status: models.CardStatusActive, Balance: decimal.NewFromInt(100),
	})
	// A limiter with an exhausted budget must not affect topups.
	limiter := ratelimit.New(1)
	limiter.Allow("1111")
	limiter.Allow("1111")
	svc := newTestService(t, mesh, limiter)

	newBalance, err := svc.Topup(context.Background(), "1111", decimal.NewFromInt(25))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !newBalance.Equal(decimal.NewFromInt(125)) {
		t.Errorf("new balance = %s, want 125", newBalance)
	}
	if len(mesh.transactions) != 1 || mesh.transactions[0].Type != models.TransactionTypeTopup {
		t.Fatal("expected a single TOPUP ledger entry")
	}
	if mesh.transactions[0].RecipientCardID == nil || *mesh.transactions[0].RecipientCardID != 1 {
		t.Error("a topup entry records the card on the recipient leg")
	}
}
