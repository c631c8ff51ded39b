package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/familyfinance/finchat/internal/store"
	"github.com/shopspring/decimal"
)

type FinanceRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	BankID      *int64          `json:"bankId"`
}

func (h *APIHandler) ListFinancesHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	finances, err := h.store.ListFinances(r.Context(), userID)
	if err != nil {
		slog.Error("Error listing finances", "user_id", userID, "error", err)
		respondError(w, http.StatusInternalServerError, "Erro ao carregar finanças")
		return
	}
	if finances == nil {
		finances = []store.Finance{}
	}
	respondJSON(w, http.StatusOK, finances)
}

func (h *APIHandler) CreateFinanceHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req FinanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	financeType := store.FinanceType(strings.ToLower(req.Type))
	if req.Description == "" || req.Amount.IsZero() || req.Type == "" {
		respondError(w, http.StatusBadRequest, "Descrição, valor e tipo são obrigatórios")
		return
	}
	if !financeType.Valid() {
		respondError(w, http.StatusBadRequest, "Tipo deve ser 'entrada' ou 'saida'")
		return
	}

	finance := &store.Finance{
		Description: req.Description,
		Amount:      req.Amount,
		Type:        financeType,
		UserID:      userID,
	}

	// A bank id of 0 means no bank, as in the web client.
	if req.BankID != nil && *req.BankID != 0 {
		if _, err := h.store.GetBank(r.Context(), *req.BankID, userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondError(w, http.StatusNotFound, "Banco não encontrado")
				return
			}
			slog.Error("Error loading bank", "user_id", userID, "bank_id", *req.BankID, "error", err)
			respondError(w, http.StatusInternalServerError, "Erro ao criar transação")
			return
		}
		finance.BankID = req.BankID
	}

	if err := h.store.CreateFinance(r.Context(), finance); err != nil {
		slog.Error("Error creating finance", "user_id", userID, "error", err)
		respondError(w, http.StatusInternalServerError, "Erro ao criar transação")
		return
	}
	respondJSON(w, http.StatusCreated, finance)
}

func (h *APIHandler) DeleteFinanceHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusNotFound, "Transação não encontrada")
		return
	}

	if err := h.store.DeleteFinance(r.Context(), id, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Transação não encontrada")
			return
		}
		slog.Error("Error deleting finance", "user_id", userID, "finance_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Erro ao deletar transação")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Lançamento deletado com sucesso"})
}
