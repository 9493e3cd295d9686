package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mobcash/mobcash/core"
	"github.com/mobcash/mobcash/store"
	"github.com/pandodao/generic"
	"github.com/shopspring/decimal"
)

type submitBody struct {
	Direction      string `json:"direction"`
	Amount         string `json:"amount"`
	ExternalUserID int64  `json:"external_user_id"`
	Note           string `json:"note"`
}

type submitView struct {
	Status        core.SubmitStatus `json:"status"`
	Reason        string            `json:"reason,omitempty"`
	Transaction   *core.Transaction `json:"transaction,omitempty"`
	WalletBalance decimal.Decimal   `json:"wallet_balance"`
}

func (s *Server) submitTransaction(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		renderError(w, http.StatusBadRequest, "missing owner")
		return
	}

	var body submitBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if len(body.Note) > 255 {
		renderError(w, http.StatusBadRequest, "note too long")
		return
	}

	req := &core.SubmitRequest{
		OwnerID:        owner,
		Direction:      core.Direction(body.Direction),
		Amount:         generic.Try(decimal.NewFromString(body.Amount)),
		ExternalUserID: body.ExternalUserID,
		Note:           body.Note,
	}

	logger := s.requestLogger(r)

	result, err := s.transactionz.Submit(r.Context(), req)
	if err != nil {
		logger.Error("transactionz.Submit", "err", err)

		switch {
		case errors.Is(err, core.ErrExternalUnavailable), errors.Is(err, core.ErrExternalMalformedResponse):
			renderError(w, http.StatusServiceUnavailable, "external directory unavailable")
		case store.IsErrRetryable(err):
			renderRetryable(w, "storage busy, resubmit if desired")
		default:
			renderError(w, http.StatusInternalServerError, "internal failure")
		}

		return
	}

	view := submitView{
		Status:        result.Status,
		Reason:        result.Reason,
		Transaction:   result.Transaction,
		WalletBalance: result.WalletBalance,
	}

	// Every outcome class gets its own distinguishable shape: the caller
	// must be able to message the operator precisely.
	switch result.Status {
	case core.SubmitStatusRejected:
		renderJSON(w, http.StatusUnprocessableEntity, view)
	case core.SubmitStatusFailed:
		renderJSON(w, http.StatusBadGateway, view)
	default:
		// synced and reconcile_required both report 200; the status field
		// carries the divergence signal
		renderJSON(w, http.StatusOK, view)
	}
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	counts := map[string]int64{}

	for _, status := range []core.SyncStatus{
		core.SyncStatusPending,
		core.SyncStatusSynced,
		core.SyncStatusFailed,
	} {
		n, err := s.transactions.CountStatus(ctx, status)
		if err != nil {
			s.requestLogger(r).Error("transactions.CountStatus", "err", err)
			renderError(w, http.StatusInternalServerError, "storage failure")
			return
		}

		counts[string(status)] = n
	}

	renderJSON(w, http.StatusOK, map[string]any{"transactions": counts})
}

func (s *Server) listClients(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("referral_token")
	if token == "" {
		renderJSON(w, http.StatusOK, map[string]any{"results": []any{}})
		return
	}

	users, err := s.externalz.LookupUsers(r.Context(), token)
	if err != nil {
		s.requestLogger(r).Warn("externalz.LookupUsers", "err", err)
		renderJSON(w, http.StatusOK, map[string]any{"results": []any{}})
		return
	}

	results := make([]map[string]any, 0, len(users))
	for _, u := range users {
		results = append(results, map[string]any{
			"id":    u.ID,
			"label": u.Label(),
			"name":  u.Name,
			"email": u.Email,
		})
	}

	renderJSON(w, http.StatusOK, map[string]any{"results": results})
}
