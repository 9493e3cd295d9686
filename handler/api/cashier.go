package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mobcash/mobcash/core"
	"github.com/pandodao/generic"
	"github.com/shopspring/decimal"
)

type transferBody struct {
	FromOwnerID string `json:"from_owner_id"`
	ToOwnerID   string `json:"to_owner_id"`
	Amount      string `json:"amount"`
}

func (s *Server) createTransfer(w http.ResponseWriter, r *http.Request) {
	var body transferBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if body.FromOwnerID == "" {
		// the operator moves funds out of their own wallet by default
		body.FromOwnerID = ownerID(r)
	}

	result, err := s.cashierz.Transfer(
		r.Context(),
		body.FromOwnerID,
		body.ToOwnerID,
		generic.Try(decimal.NewFromString(body.Amount)),
	)

	if err != nil {
		if errors.Is(err, core.ErrInvalidRequest) {
			renderError(w, http.StatusBadRequest, err.Error())
			return
		}

		s.requestLogger(r).Error("cashierz.Transfer", "err", err)
		renderError(w, http.StatusInternalServerError, "internal failure")
		return
	}

	status := http.StatusOK
	if result.Status == core.TransferStatusInsufficientFunds {
		status = http.StatusUnprocessableEntity
	}

	renderJSON(w, status, map[string]any{"status": result.Status})
}

func (s *Server) listTransfers(w http.ResponseWriter, r *http.Request) {
	transfers, err := s.transfers.List(r.Context(), limitParam(r, 25, 100))
	if err != nil {
		s.requestLogger(r).Error("transfers.List", "err", err)
		renderError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	renderJSON(w, http.StatusOK, map[string]any{"transfers": transfers})
}
