package api

import (
	"net/http"
	"strconv"

	"github.com/mobcash/mobcash/core"
	"github.com/mobcash/mobcash/store"
)

func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		renderError(w, http.StatusBadRequest, "missing owner")
		return
	}

	wallet, err := s.wallets.GetOrCreate(r.Context(), owner)
	if err != nil {
		s.requestLogger(r).Error("wallets.GetOrCreate", "err", err)
		renderError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	renderJSON(w, http.StatusOK, wallet)
}

func limitParam(r *http.Request, def, max int) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return def
	}

	if limit > max {
		return max
	}

	return limit
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		renderError(w, http.StatusBadRequest, "missing owner")
		return
	}

	wallet, err := s.wallets.GetOrCreate(r.Context(), owner)
	if err != nil {
		s.requestLogger(r).Error("wallets.GetOrCreate", "err", err)
		renderError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	txs, err := s.transactions.ListRecent(r.Context(), wallet.ID, limitParam(r, 10, 100))
	if err != nil {
		s.requestLogger(r).Error("transactions.ListRecent", "err", err)
		renderError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	renderJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

func (s *Server) listAllTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		txs []*core.Transaction
		err error
	)

	if owner := r.URL.Query().Get("owner"); owner != "" {
		// a read-only filter must not create wallets for mistyped owners
		wallet, ferr := s.wallets.FindOwner(ctx, owner)
		if store.IsErrNotFound(ferr) {
			renderJSON(w, http.StatusOK, map[string]any{"transactions": []any{}})
			return
		}

		if err = ferr; err == nil {
			txs, err = s.transactions.ListRecent(ctx, wallet.ID, limitParam(r, 25, 100))
		}
	} else {
		txs, err = s.transactions.ListAllRecent(ctx, limitParam(r, 25, 100))
	}

	if err != nil {
		s.requestLogger(r).Error("list transactions", "err", err)
		renderError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	renderJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}
