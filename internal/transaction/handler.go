package transaction

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/Dan9191/virtualcard/internal/apperr"
	"github.com/Dan9191/virtualcard/internal/httputil"
	"github.com/Dan9191/virtualcard/internal/models"
)

// Handler exposes the transaction service HTTP surface
type Handler struct {
	svc *Service
}

// NewHandler initializes a new handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register wires the transaction routes into the router
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/transactions", h.CreateTransaction).Methods("POST")
	r.HandleFunc("/transactions/{cardId}/currentMonth", h.GetCurrentMonthTransactions).Methods("GET")
	r.HandleFunc("/transactions/{cardId}/statement", h.GetMonthlyStatement).Methods("GET")
	r.HandleFunc("/transactions/{cardId}", h.GetTransactionsByCard).Methods("GET")
}

// CreateTransaction appends a ledger entry
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, apperr.InvalidInputf("invalid request body"))
		return
	}
	tx, err := h.svc.CreateTransaction(req)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, tx)
}

// GetTransactionsByCard returns a paginated, time-windowed ledger query
func (h *Handler) GetTransactionsByCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := strconv.ParseInt(mux.Vars(r)["cardId"], 10, 64)
	if err != nil {
		httputil.RespondError(w, apperr.InvalidInputf("invalid card id"))
		return
	}

	page, err := queryInt(r, "page", 0)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	size, err := queryInt(r, "size", 20)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	lower, err := queryTime(r, "lowerBoundDate")
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	upper, err := queryTime(r, "upperBoundDate")
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	resp, err := h.svc.GetTransactionsByCard(cardID, page, size, lower, upper)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// GetCurrentMonthTransactions returns the card's entries for the current month
func (h *Handler) GetCurrentMonthTransactions(w http.ResponseWriter, r *http.Request) {
	cardID, err := strconv.ParseInt(mux.Vars(r)["cardId"], 10, 64)
	if err != nil {
		httputil.RespondError(w, apperr.InvalidInputf("invalid card id"))
		return
	}
	txs, err := h.svc.GetCurrentMonthTransactions(cardID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, txs)
}

// GetMonthlyStatement returns the current-month entries as an XML statement
func (h *Handler) GetMonthlyStatement(w http.ResponseWriter, r *http.Request) {
	cardID, err := strconv.ParseInt(mux.Vars(r)["cardId"], 10, 64)
	if err != nil {
		httputil.RespondError(w, apperr.InvalidInputf("invalid card id"))
		return
	}
	xml, err := h.svc.BuildMonthlyStatement(cardID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(xml)
}

func queryInt(r *http.Request, name string, defaultVal int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.InvalidInputf("invalid %s parameter", name)
	}
	return v, nil
}

func queryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperr.InvalidInputf("invalid %s parameter", name)
	}
	return &t, nil
}
