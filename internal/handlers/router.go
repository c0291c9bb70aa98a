package handlers

import (
	"net/http"

	"wallit/internal/config"
	"wallit/internal/db"
	"wallit/internal/middleware"
	"wallit/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	cfg          config.Config
	txRunner     db.TxRunner
	users        UserStore
	banks        BankStore
	categories   CategoryStore
	transactions TransactionStore
	ingestion    IngestionService
	saldo        SaldoService
	currency     CurrencyService
	hub          *websocket.Hub
}

func New(cfg config.Config, txRunner db.TxRunner, users UserStore, banks BankStore, categories CategoryStore, transactions TransactionStore, ingestion IngestionService, saldo SaldoService, currency CurrencyService, hub *websocket.Hub) *Handler {
	return &Handler{
		cfg:          cfg,
		txRunner:     txRunner,
		users:        users,
		banks:        banks,
		categories:   categories,
		transactions: transactions,
		ingestion:    ingestion,
		saldo:        saldo,
		currency:     currency,
		hub:          hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/banks", h.ListBanks)
	router.Route("/categories", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Delete("/{id}", h.DeleteCategory)
	})
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/transactions", h.ListTransactions)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/transactions/upload", h.UploadStatements)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/users/{id}/monthly", h.MonthlySaldo)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Put("/users/currency", h.SetMainCurrency)
	router.Get("/ws/updates", h.WSUpdates)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
