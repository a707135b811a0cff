package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"StockPulse/internal/analyzer"
	"StockPulse/internal/batch"
	"StockPulse/internal/cache"
	"StockPulse/internal/collector"
	"StockPulse/internal/config"
	"StockPulse/internal/notifier"
	"StockPulse/internal/recorder"
	"StockPulse/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] StockPulse starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init fetcher
	ds := cfg.DataSource
	var fetcher collector.Fetcher
	var lister scheduler.SymbolLister
	switch ds.Provider {
	case "rest":
		fetcher = collector.NewRESTFetcher(ds.BaseURL, ds.APIKey, cfg.Proxy, ds.RequestsPerSecond)
	case "eastmoney":
		em := collector.NewEastMoneyFetcher(cfg.Proxy, ds.RequestsPerSecond)
		fetcher, lister = em, em
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy, ds.RequestsPerSecond)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Init bar cache
	var store cache.Store
	if cfg.Cache.RedisAddr != "" {
		rs := cache.NewRedisStore(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cfg.Cache.TTL)
		if err := rs.Ping(ctx); err != nil {
			log.Printf("[WARN] redis %s unavailable, using memory cache: %v", cfg.Cache.RedisAddr, err)
			store = cache.NewMemory(cfg.Cache.TTL)
		} else {
			store = rs
			defer rs.Close()
		}
	} else {
		store = cache.NewMemory(cfg.Cache.TTL)
	}

	// Init analysis pipeline
	col := collector.NewCollector(fetcher, store, ds.Timeout)
	an := analyzer.New(col)
	an.PeriodDays = cfg.Analysis.PeriodDays
	orch := batch.NewOrchestrator(an, cfg.Analysis.Concurrency)

	// Init recorders
	recs := recorder.Fanout{recorder.NewFileRecorder(cfg.Output.ResultsDir)}
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, skipping: %v", err)
		} else {
			recs = append(recs, sr)
		}
	}
	if cfg.Database.PostgresDSN != "" {
		pr, err := recorder.NewPostgresRecorder(ctx, cfg.Database.PostgresDSN)
		if err != nil {
			log.Printf("[WARN] init postgres recorder failed, skipping: %v", err)
		} else {
			recs = append(recs, pr)
		}
	}
	defer recs.Close()

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	} else {
		log.Println("[WARN] telegram not configured, reports are only recorded")
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, an, orch, sender, recs, cfg.Location())
	sched.Options = batch.Options{
		PeriodDays:    cfg.Analysis.PeriodDays,
		MinConfidence: cfg.Analysis.MinConfidence,
		Cap:           cfg.Analysis.TopN,
	}
	if len(cfg.Universe.Symbols) > 0 {
		sched.Universe = batch.NewUniverse(cfg.Universe.Symbols, time.Now())
	} else if u, err := batch.LoadUniverse(cfg.Universe.StateFile); err != nil {
		log.Printf("[WARN] load universe: %v", err)
	} else {
		// Without a configured list the universe comes from the provider's board listing.
		sched.Universe = u
		sched.UniversePath = cfg.Universe.StateFile
		sched.Lister = lister
	}
	sched.UniverseLimit = cfg.Analysis.UniverseLimit
	sched.UniverseTTL = cfg.Cache.UniverseTTL
	sched.Indices = cfg.Universe.Indices
	sched.RealtimeMinutes = cfg.Analysis.RealtimeMinutes
	if err := sched.RegisterAll(cfg.Schedule.DailyCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	if mem, ok := store.(*cache.Memory); ok {
		if _, err := sched.Cron.AddFunc("@every 10m", func() {
			if n := mem.Purge(); n > 0 {
				log.Printf("[INFO] purged %d stale cache entries, %d left", n, mem.Len())
			}
		}); err != nil {
			log.Fatalf("[FATAL] register cache purge: %v", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing daily batch now")
		go sched.RunBatchNow()
	}

	log.Println("[INFO] StockPulse is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] StockPulse stopped")
}
