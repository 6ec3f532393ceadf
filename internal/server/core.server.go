package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sacco-ledger-service/internal/config"
	hrest "sacco-ledger-service/internal/handler/rest"
	"sacco-ledger-service/internal/pkg/logger"
	publisher "sacco-ledger-service/internal/pub"
	"sacco-ledger-service/internal/repository"
	"sacco-ledger-service/internal/repository/memory"
	"sacco-ledger-service/internal/service"
	"sacco-ledger-service/internal/usecase"
	"sacco-ledger-service/pkg/utils"
)

// NewLedgerHTTPServer wires the full stack and serves until the context is
// cancelled
func NewLedgerHTTPServer(ctx context.Context, cfg config.AppConfig) error {
	log := logger.NewLogger(cfg.LogMode)
	defer log.Sync() //nolint:errcheck

	var (
		accountRepo   repository.AccountRepository
		journalRepo   repository.JournalRepository
		categoryRepo  repository.CategoryRepository
		fineRepo      repository.FineRepository
		voidRepo      repository.VoidRepository
		store         repository.LedgerStore
		statementRepo repository.StatementRepository
		rdb           *redis.Client
	)

	switch cfg.StoreDriver {
	case config.StoreMemory:
		// Dev mode: everything in process, no cache
		mem := memory.NewStore()
		accountRepo = mem.Accounts()
		journalRepo = mem.Journal()
		categoryRepo = mem.Categories()
		fineRepo = mem.Fines()
		voidRepo = mem.Voids()
		store = mem.Ledger()
		statementRepo = mem.Statements()
		log.Info("using in-memory store")

	default:
		dbpool, err := config.ConnectDB()
		if err != nil {
			return err
		}
		defer dbpool.Close()

		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       0,
		})
		defer rdb.Close()

		accountRepo = repository.NewAccountRepo(dbpool)
		journalRepo = repository.NewJournalRepo(dbpool)
		categoryRepo = repository.NewCategoryRepo(dbpool)
		fineRepo = repository.NewFineRepo(dbpool)
		voidRepo = repository.NewVoidRepo(dbpool)
		store = repository.NewPostingStore(dbpool, journalRepo)
		statementRepo = repository.NewStatementRepo(dbpool)
	}

	// --- Event publisher ---
	var events publisher.EventPublisher = publisher.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub := publisher.NewLedgerEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer kafkaPub.Close()
		events = kafkaPub
	}

	refs := utils.NewReferenceGenerator()

	// --- Usecases ---
	accountUC := usecase.NewAccountUsecase(accountRepo, rdb, log)
	postingUC := usecase.NewPostingUsecase(accountRepo, fineRepo, store, refs, events, log)
	voidUC := usecase.NewVoidUsecase(store, journalRepo, voidRepo, events, log)
	journalUC := usecase.NewJournalUsecase(journalRepo)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo, rdb)
	statementUC := usecase.NewStatementUsecase(statementRepo, rdb)

	// --- Seed the chart of accounts (non-blocking) ---
	seeder := service.NewChartSeeder(accountUC, categoryUC, log)
	go func() {
		if err := seeder.SeedSystem(context.Background()); err != nil {
			log.Warn("system seeding failed", zap.Error(err))
		}
	}()

	// --- HTTP handler ---
	handler := hrest.NewLedgerRestHandler(accountUC, postingUC, voidUC, journalUC, categoryUC, statementUC)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("ledger REST server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
