package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/familyfinance/finchat/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// BankRequest is the body of bank create and update calls. Absent fields are
// nil, so an update only touches what the client sent.
type BankRequest struct {
	Name        *string          `json:"name"`
	AccountType *string          `json:"accountType"`
	Balance     *decimal.Decimal `json:"balance"`
	Logo        *string          `json:"logo"`
}

// applyTo overlays the fields present in the request onto bank. An empty logo
// clears it.
func (req BankRequest) applyTo(bank *store.Bank) {
	if req.Name != nil {
		bank.Name = strings.TrimSpace(*req.Name)
	}
	if req.AccountType != nil {
		bank.AccountType = *req.AccountType
	}
	if req.Balance != nil {
		bank.Balance = *req.Balance
	}
	if req.Logo != nil {
		if *req.Logo == "" {
			bank.Logo = nil
		} else {
			logo := *req.Logo
			bank.Logo = &logo
		}
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func (h *APIHandler) ListBanksHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	pathUserID, err := pathID(r, "userID")
	if err != nil || pathUserID != userID {
		respondError(w, http.StatusForbidden, "Acesso não autorizado.")
		return
	}

	banks, err := h.store.ListBanks(r.Context(), userID)
	if err != nil {
		slog.Error("Error listing banks", "user_id", userID, "error", err)
		respondError(w, http.StatusInternalServerError, "Erro ao listar bancos.")
		return
	}
	if banks == nil {
		banks = []store.Bank{}
	}
	respondJSON(w, http.StatusOK, banks)
}

func (h *APIHandler) CreateBankHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req BankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	bank := &store.Bank{UserID: userID}
	req.applyTo(bank)
	if bank.Name == "" {
		respondError(w, http.StatusBadRequest, "Nome do banco é obrigatório.")
		return
	}

	if err := h.store.CreateBank(r.Context(), bank); err != nil {
		slog.Error("Error creating bank", "user_id", userID, "error", err)
		respondError(w, http.StatusInternalServerError, "Erro ao criar banco.")
		return
	}
	respondJSON(w, http.StatusCreated, bank)
}

func (h *APIHandler) UpdateBankHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusNotFound, "Banco não encontrado.")
		return
	}

	var req BankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	bank, err := h.store.GetBank(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Banco não encontrado.")
			return
		}
		slog.Error("Error loading bank", "user_id", userID, "bank_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Erro ao atualizar banco.")
		return
	}

	req.applyTo(bank)
	// An empty name would match every message in the chat bank lookup.
	if bank.Name == "" {
		respondError(w, http.StatusBadRequest, "Nome do banco é obrigatório.")
		return
	}

	if err := h.store.UpdateBank(r.Context(), bank); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Banco não encontrado.")
			return
		}
		slog.Error("Error updating bank", "user_id", userID, "bank_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Erro ao atualizar banco.")
		return
	}
	respondJSON(w, http.StatusOK, bank)
}

func (h *APIHandler) DeleteBankHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusNotFound, "Banco não encontrado.")
		return
	}

	if err := h.store.DeleteBank(r.Context(), id, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Banco não encontrado.")
			return
		}
		slog.Error("Error deleting bank", "user_id", userID, "bank_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Erro ao excluir banco.")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Banco removido com sucesso."})
}
