package card

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/virtualcard/internal/apperr"
	"github.com/Dan9191/virtualcard/internal/httputil"
	"github.com/Dan9191/virtualcard/internal/models"
)

// Handler exposes the card service HTTP surface
type Handler struct {
	svc *Service
}

// NewHandler initializes a new handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register wires the card routes into the router
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/cards", h.CreateCard).Methods("POST")
	r.HandleFunc("/cards/getAllCardsByUser/{username}", h.GetAllCardsByUser).Methods("GET")
	r.HandleFunc("/cards/covered/{cardNumber}", h.GetCoveredCard).Methods("GET")
	r.HandleFunc("/cards/{cardNumber}", h.GetCard).Methods("GET")
	r.HandleFunc("/cards/{id}/updateBalance", h.UpdateBalance).Methods("PUT")
}

// CreateCard handles card issuance
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req models.AddCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, apperr.InvalidInputf("invalid request body"))
		return
	}
	if err := h.svc.CreateCard(r.Context(), req); err != nil {
		httputil.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// GetCard returns a valid (non-blocked) card by card number
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["cardNumber"]
	card, err := h.svc.GetValidCard(code)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, card)
}

// GetCoveredCard returns a valid card only if its balance covers the amount
func (h *Handler) GetCoveredCard(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["cardNumber"]
	amount, err := decimal.NewFromString(r.URL.Query().Get("amount"))
	if err != nil {
		httputil.RespondError(w, apperr.InvalidInputf("invalid amount"))
		return
	}
	card, err := h.svc.GetValidCoveredCard(code, amount)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, card)
}

// GetAllCardsByUser lists the user's cards regardless of status
func (h *Handler) GetAllCardsByUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	cards, err := h.svc.GetAllCardsByUsername(r.Context(), username)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	if cards == nil {
		cards = []models.Card{}
	}
	httputil.RespondJSON(w, http.StatusOK, cards)
}

// UpdateBalance sets a card balance, guarded by the optimistic version check
func (h *Handler) UpdateBalance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		httputil.RespondError(w, apperr.InvalidInputf("invalid card id"))
		return
	}
	var req models.UpdateBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, apperr.InvalidInputf("invalid request body"))
		return
	}
	if err := h.svc.UpdateBalance(id, req.NewBalance); err != nil {
		httputil.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
