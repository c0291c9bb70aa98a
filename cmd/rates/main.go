package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"wallit/internal/config"
	"wallit/internal/db"
	"wallit/internal/rates"
	"wallit/internal/store"
)

// Maintenance tool for the exchange rate archive. "download" pulls a date
// range from the provider and stores it, "export" dumps stored rates to a
// CSV file, "import" loads such a file back.
func main() {
	var (
		command = flag.String("cmd", "download", "download, export or import")
		target  = flag.String("target", "", "target currency, defaults to the configured default")
		from    = flag.String("from", "", "start date (YYYY-MM-DD)")
		to      = flag.String("to", "", "end date (YYYY-MM-DD), defaults to today")
		file    = flag.String("file", "rates.csv", "archive file for export/import")
	)
	flag.Parse()

	cfg := config.Load()
	if *target == "" {
		*target = cfg.DefaultCurrency
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()
	rateStore := store.NewRateStore(database)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	switch *command {
	case "download":
		if err := download(ctx, cfg, rateStore, *target, *from, *to); err != nil {
			log.Fatalf("download failed: %v", err)
		}
	case "export":
		if err := export(ctx, cfg, rateStore, *target, *file); err != nil {
			log.Fatalf("export failed: %v", err)
		}
	case "import":
		if err := importArchive(ctx, rateStore, *target, *file); err != nil {
			log.Fatalf("import failed: %v", err)
		}
	default:
		log.Fatalf("unknown command %q", *command)
	}
}

func download(ctx context.Context, cfg config.Config, rateStore *store.RateStore, target, from, to string) error {
	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return fmt.Errorf("invalid -from date: %w", err)
	}
	end := time.Now().UTC()
	if to != "" {
		end, err = time.Parse("2006-01-02", to)
		if err != nil {
			return fmt.Errorf("invalid -to date: %w", err)
		}
	}

	service := rates.NewService(rates.NewCache(cfg.CacheTTL), rates.NewFetcher(cfg), rateStore)
	records, failed, err := service.DownloadRange(ctx, target, start, end)
	if err != nil {
		return err
	}
	if len(records) > 0 {
		if err := rateStore.Add(ctx, records); err != nil {
			return err
		}
	}
	log.Printf("stored %d rates for %s, %d day(s) failed", len(records), target, failed)
	return nil
}

func export(ctx context.Context, cfg config.Config, rateStore *store.RateStore, target, file string) error {
	records, err := rateStore.ListByTarget(ctx, target)
	if err != nil {
		return err
	}
	out, err := os.Create(file)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := rates.SaveArchive(out, records, cfg.SupportedCurrencies); err != nil {
		return err
	}
	log.Printf("exported %d rates for %s to %s", len(records), target, file)
	return nil
}

func importArchive(ctx context.Context, rateStore *store.RateStore, target, file string) error {
	in, err := os.Open(file)
	if err != nil {
		return err
	}
	defer in.Close()
	records, err := rates.LoadArchive(in, target)
	if err != nil {
		return err
	}
	if len(records) > 0 {
		if err := rateStore.Add(ctx, records); err != nil {
			return err
		}
	}
	log.Printf("imported %d rates for %s from %s", len(records), target, file)
	return nil
}
