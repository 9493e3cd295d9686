package api

import (
	"log/slog"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mobcash/mobcash/core"
)

type Config struct {
	// OperatorKey guards the cashier endpoints. Callers present it in the
	// X-Operator-Key header.
	OperatorKey string `valid:"required"`
}

func New(
	wallets core.WalletStore,
	transactions core.TransactionStore,
	transfers core.TransferStore,
	externalz core.ExternalService,
	transactionz core.TransactionService,
	cashierz core.CashierService,
	logger *slog.Logger,
	cfg Config,
) *Server {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Server{
		wallets:      wallets,
		transactions: transactions,
		transfers:    transfers,
		externalz:    externalz,
		transactionz: transactionz,
		cashierz:     cashierz,
		logger:       logger.With("server", "api"),
		cfg:          cfg,
	}
}

type Server struct {
	wallets      core.WalletStore
	transactions core.TransactionStore
	transfers    core.TransferStore
	externalz    core.ExternalService
	transactionz core.TransactionService
	cashierz     core.CashierService
	logger       *slog.Logger
	cfg          Config
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/wallet", s.getWallet)
	r.Get("/clients", s.listClients)

	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", s.listTransactions)
		r.Post("/", s.submitTransaction)
	})

	r.Route("/cashier", func(r chi.Router) {
		r.Use(s.requireOperator)
		r.Get("/transactions", s.listAllTransactions)
		r.Get("/stats", s.getStats)
		r.Route("/transfers", func(r chi.Router) {
			r.Get("/", s.listTransfers)
			r.Post("/", s.createTransfer)
		})
	})

	return r
}

// ownerID is supplied by the auth layer in front of this service.
func ownerID(r *http.Request) string {
	return r.Header.Get("X-Owner-Id")
}

func (s *Server) requireOperator(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Operator-Key") != s.cfg.OperatorKey {
			renderError(w, http.StatusUnauthorized, "operator capability required")
			return
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

func (s *Server) requestLogger(r *http.Request) *slog.Logger {
	return s.logger.With("request", uuid.NewString(), "path", r.URL.Path)
}
