package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"coin-dashboard/internal/bot"
	"coin-dashboard/internal/chart"
	"coin-dashboard/internal/coingecko"
	"coin-dashboard/internal/config"
	"coin-dashboard/internal/market"
	"coin-dashboard/internal/metrics"
	"coin-dashboard/internal/session"
	"coin-dashboard/internal/sparkline"
)

func main() {
	path := os.Getenv("DASHBOARD_CONFIG")
	if path == "" {
		path = "config.yaml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log := logrus.New()
	log.SetLevel(cfg.Level())
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	client := coingecko.NewClient(
		coingecko.WithBaseURL(cfg.CoinGecko.BaseURL),
		coingecko.WithHTTPClient(coingecko.NewHTTPClient(cfg.Timeout())),
		coingecko.WithAPIKey(cfg.CoinGecko.APIKey),
		coingecko.WithLogger(log.WithField("component", "coingecko")),
	)

	var store session.Store = session.NewMemoryStore()
	if cfg.Session.Store == config.StoreSQLite {
		sqlite, err := session.NewSQLiteStore(cfg.Session.SQLitePath)
		if err != nil {
			log.WithError(err).Fatal("failed to open session store")
		}
		defer func() {
			if err := sqlite.Close(); err != nil {
				log.WithError(err).Warn("failed to close session store")
			}
		}()
		store = sqlite
	}
	cache := session.NewCache(store, log.WithField("component", "session"))

	m := metrics.New("")
	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(cfg.MetricsAddr); err != nil {
				log.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	renderer := chart.NewUnicode(cfg.Dashboard.ChartWidth)
	pipe := sparkline.NewPipeline(cfg.ReferenceCurrency(), renderer)

	opts := market.DefaultListOptions()
	opts.Currency = cfg.Currency()
	opts.PageSize = cfg.Dashboard.PageSize
	opts.Page = cfg.Dashboard.Page

	viewLog := log.WithField("component", "view")
	b, err := bot.New(cfg.Telegram.Token, bot.Deps{
		NewList: func() *market.ListViewModel {
			return market.NewListViewModel(client, cache, opts, m, viewLog)
		},
		NewDetail: func() *market.DetailViewModel {
			return market.NewDetailViewModel(client, pipe, cfg.Currency(), m, viewLog)
		},
		Renderer:  renderer,
		Currency:  cfg.Currency(),
		Reference: cfg.ReferenceCurrency(),
		Log:       log.WithField("component", "bot"),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to start bot")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b.Start(ctx)
	log.Info("shutting down")
}
