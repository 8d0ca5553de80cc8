package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mayank1327/food-ordering-app/internal/wallet"
)

type WalletHandler struct {
	svc wallet.Service
}

func NewWalletHandler(svc wallet.Service) *WalletHandler {
	return &WalletHandler{svc: svc}
}

func (h *WalletHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	methods, err := h.svc.List(r.Context(), caller)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, methods)
}

func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	pm, err := h.svc.Get(r.Context(), caller, id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, pm)
}

func (h *WalletHandler) Add(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var in wallet.AddInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pm, err := h.svc.Add(r.Context(), caller, in)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, pm)
}
