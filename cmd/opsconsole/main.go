package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/opsconsole/internal/config"
	"github.com/jask/opsconsole/internal/database"
	"github.com/jask/opsconsole/internal/database/repository"
	"github.com/jask/opsconsole/internal/links"
	"github.com/jask/opsconsole/internal/logging"
	"github.com/jask/opsconsole/internal/metrics"
	"github.com/jask/opsconsole/internal/payout"
	"github.com/jask/opsconsole/internal/seed"
	"github.com/jask/opsconsole/internal/service"
	"github.com/jask/opsconsole/internal/tui"
	"github.com/jask/opsconsole/internal/wallet"
)

func main() {
	writeConfig := flag.Bool("write-config", false, "write the effective configuration to the config path and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *writeConfig {
		path := config.Path()
		if err := config.Save(path, cfg); err != nil {
			log.Fatalf("write config: %v", err)
		}
		fmt.Println("wrote", path)
		return
	}

	logger, logFile, err := logging.Open(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		log.Fatalf("log: %v", err)
	}
	defer logFile.Close()

	set, err := seed.Load(cfg.Seed.Path)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	rates, err := payout.NewRates(cfg.Payout.Base, cfg.Payout.PerKm, cfg.Payout.FreeRadiusKm)
	if err != nil {
		log.Fatalf("payout rates: %v", err)
	}

	db, err := database.OpenJournal()
	if err != nil {
		log.Fatalf("journal: %v", err)
	}
	defer db.Close()

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.Addr); err != nil {
				logger.Error("metrics listener stopped", "addr", cfg.Metrics.Addr, "err", err)
			}
		}()
	}

	messenger := links.Messenger{BaseURL: cfg.Links.MessagingBaseURL, Phone: cfg.Links.MessagingPhone}
	console, err := service.NewConsole(set, service.Options{
		Rates: rates,
		Wallet: wallet.NewService(messenger, cfg.UI.CurrencySymbol, wallet.Limits{
			PerMinute: cfg.Wallet.TopUpsPerMinute,
			Burst:     cfg.Wallet.TopUpBurst,
		}),
		Maps:          links.MapLinks{BaseURL: cfg.Links.MapBaseURL, Delta: cfg.Links.MapDelta},
		Journal:       repository.NewActivityRepo(db),
		Metrics:       m,
		Logger:        logger,
		WindowSeconds: cfg.Verification.WindowSeconds,
	})
	if err != nil {
		log.Fatalf("seed stores: %v", err)
	}
	logger.Info("console started",
		"listings", console.Directory.Len(),
		"orders", len(console.Orders.List()),
		"metrics_addr", cfg.Metrics.Addr)

	p := tea.NewProgram(tui.New(ctx, cfg, console, &service.MaintenanceService{DB: db}),
		tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
	logger.Info("console stopped")
}
