package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallit/internal/config"
	"wallit/internal/db"
	"wallit/internal/handlers"
	"wallit/internal/rates"
	"wallit/internal/services"
	"wallit/internal/statement"
	"wallit/internal/store"
	"wallit/internal/websocket"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	banks := store.NewBankStore(database)
	categories := store.NewCategoryStore(database)
	transactions := store.NewTransactionStore(database)
	rateStore := store.NewRateStore(database)
	txRunner := db.NewTxRunner(database)

	registry, err := buildRegistry(banks)
	if err != nil {
		log.Fatalf("failed to build statement registry: %v", err)
	}

	cache := rates.NewCache(cfg.CacheTTL)
	fetcher := rates.NewFetcher(cfg)
	rateService := rates.NewService(cache, fetcher, rateStore)
	converter := services.NewConverter(rateService)

	hub := websocket.NewHub()
	ingestion := services.NewIngestionService(cfg, registry, converter, txRunner, users, transactions, hub)
	saldo := services.NewSaldoService(transactions)
	currency := services.NewCurrencyService(cfg, converter, txRunner, users, transactions, hub)

	handler := handlers.New(cfg, txRunner, users, banks, categories, transactions, ingestion, saldo, currency, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("wallit API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

// buildRegistry associates each seeded bank with its parser. A bank row
// without an implemented parser only disables uploads for that bank.
func buildRegistry(banks *store.BankStore) (*statement.Registry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := banks.List(ctx)
	if err != nil {
		return nil, err
	}
	registry := statement.NewRegistry()
	for _, bank := range rows {
		parser, ok := statement.ParserFor(bank.Name)
		if !ok {
			log.Printf("no parser implemented for bank %q, uploads for it are disabled", bank.Name)
			continue
		}
		registry.Register(bank.Name, statement.Entry{
			Parser:    parser,
			Extension: bank.Extension,
			BankID:    bank.ID,
		})
	}
	return registry, nil
}
