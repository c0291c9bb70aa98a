package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"wallit/internal/middleware"
	"wallit/internal/services"
)

type currencyRequest struct {
	MainCurrency string `json:"main_currency"`
}

func (h *Handler) SetMainCurrency(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req currencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.currency.SetMainCurrency(r.Context(), userID, req.MainCurrency); err != nil {
		if errors.Is(err, services.ErrUnsupportedCurrency) {
			respondError(w, http.StatusBadRequest, "unsupported currency")
			return
		}
		if errors.Is(err, services.ErrRateLookup) || errors.Is(err, services.ErrNoRate) {
			respondError(w, http.StatusBadGateway, "currency conversion is unavailable")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to change currency")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"main_currency": req.MainCurrency})
}

func (h *Handler) ListBanks(w http.ResponseWriter, r *http.Request) {
	banks, err := h.banks.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load banks")
		return
	}
	respondJSON(w, http.StatusOK, banks)
}
