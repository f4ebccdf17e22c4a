package aggregate

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/virtualcard/internal/apperr"
	"github.com/Dan9191/virtualcard/internal/httputil"
	"github.com/Dan9191/virtualcard/internal/models"
)

// Handler exposes the aggregate service HTTP surface
type Handler struct {
	svc  *Service
	auth *Authenticator
}

// NewHandler initializes a new handler. auth may be nil when the login
// endpoint is not exposed.
func NewHandler(svc *Service, auth *Authenticator) *Handler {
	return &Handler{svc: svc, auth: auth}
}

// Register wires the aggregate routes into the router
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/cards-aggregate/balanceOperation", h.BalanceOperation).Methods("POST")
	r.HandleFunc("/cards-aggregate/{cardNumber}/spend", h.Spend).Methods("POST")
	r.HandleFunc("/cards-aggregate/{cardNumber}/topup", h.Topup).Methods("POST")
}

// RegisterLogin wires the public login route into the router
func (h *Handler) RegisterLogin(r *mux.Router) {
	r.HandleFunc("/login", h.Login).Methods("POST")
}

// BalanceOperation executes a two-card transfer
func (h *Handler) BalanceOperation(w http.ResponseWriter, r *http.Request) {
	var req models.BalanceOperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, apperr.InvalidInputf("invalid request body"))
		return
	}
	if err := h.svc.BalanceOperation(r.Context(), req); err != nil {
		httputil.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// Spend debits a single card
func (h *Handler) Spend(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["cardNumber"]
	amount, err := readAmount(r)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	newBalance, err := h.svc.Spend(r.Context(), code, amount)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, newBalance)
}

// Topup credits a single card
func (h *Handler) Topup(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["cardNumber"]
	amount, err := readAmount(r)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	newBalance, err := h.svc.Topup(r.Context(), code, amount)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, newBalance)
}

// Login authenticates a user and returns a bearer token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, apperr.InvalidInputf("invalid request body"))
		return
	}
	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httputil.RespondJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}
	w.Header().Set("Authorization", "Bearer "+token)
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// readAmount parses the raw decimal body of spend/topup requests
func readAmount(r *http.Request) (decimal.Decimal, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return decimal.Zero, apperr.InvalidInputf("invalid request body")
	}
	body := strings.TrimSpace(strings.Trim(strings.TrimSpace(string(raw)), `"`))
	amount, err := decimal.NewFromString(body)
	if err != nil {
		return decimal.Zero, apperr.InvalidInputf("invalid amount")
	}
	return amount, nil
}
