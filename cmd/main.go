package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pratham-srivastava-07/Nexus/internal/app/dispatcher"
	"github.com/pratham-srivastava-07/Nexus/internal/app/presence"
	"github.com/pratham-srivastava-07/Nexus/internal/app/registry"
	"github.com/pratham-srivastava-07/Nexus/internal/app/server"
	"github.com/pratham-srivastava-07/Nexus/internal/app/worker"
	"github.com/pratham-srivastava-07/Nexus/internal/config"
	"github.com/pratham-srivastava-07/Nexus/internal/core/contracts"
	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
	"github.com/pratham-srivastava-07/Nexus/internal/core/services"
	"github.com/pratham-srivastava-07/Nexus/internal/platform/telemetry"
	"github.com/pratham-srivastava-07/Nexus/internal/plugins/memory"
	"github.com/pratham-srivastava-07/Nexus/internal/plugins/postgres"
	redisPlugin "github.com/pratham-srivastava-07/Nexus/internal/plugins/redis"
	"github.com/pratham-srivastava-07/Nexus/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional .env for local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logging.NewLogger(cfg.Service.Name)
	log.Info("starting application")

	otelShutdown, err := telemetry.Init(ctx, *cfg)
	if err != nil {
		log.Error("telemetry init failed", logging.Err(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", logging.Err(err))
		}
	}()

	// Stores. An empty DATABASE_URL selects the in-process store; an empty
	// REDIS_URL selects the in-process queue and cache.
	var (
		userRepo   domain.UserRepository
		roomRepo   domain.RoomRepository
		memberRepo domain.MemberRepository
		msgRepo    domain.MessageRepository
		tx         services.TxRunner
	)
	if cfg.Postgres.DSN != "" {
		pdb, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			log.Error("postgres connection failed", logging.Err(err))
			return
		}
		defer pdb.Close()
		log.Info("postgres connected")
		userRepo = postgres.NewUserRepo(pdb)
		roomRepo = postgres.NewRoomRepo(pdb)
		memberRepo = postgres.NewMemberRepo(pdb)
		msgRepo = postgres.NewMessageRepo(pdb)
		tx = postgres.NewTxManager(pdb)
	} else {
		log.Warn("DATABASE_URL not set, using in-process store")
		store := memory.NewStore()
		userRepo = memory.NewUserRepo(store)
		roomRepo = memory.NewRoomRepo(store)
		memberRepo = memory.NewMemberRepo(store)
		msgRepo = memory.NewMessageRepo(store)
		tx = services.NopTxRunner{}
	}

	var (
		msgQueue contracts.MessageQueue
		cache    contracts.HistoryCache
	)
	if cfg.Redis.URL != "" {
		rdb, err := redisPlugin.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Error("redis connection failed", logging.Err(err))
			return
		}
		defer rdb.Close()
		log.Info("redis connected")
		msgQueue = redisPlugin.NewStreamQueue(rdb, log)
		cache = redisPlugin.NewHistoryCache(rdb, cfg.Redis.HistoryTTL)
	} else {
		log.Warn("REDIS_URL not set, using in-process queue and cache")
		msgQueue = memory.NewQueue()
		cache = memory.NewCache()
	}

	// Core wiring.
	hub := registry.NewRegistry(log)
	tracker := presence.NewTracker()
	userSvc := services.NewUserService(log, userRepo)
	roomSvc := services.NewRoomService(log, roomRepo, memberRepo, msgRepo)
	msgSvc := services.NewMessageService(log, msgQueue, hub, cache, msgRepo, roomSvc, tx)
	tokenSvc := services.NewTokenService(cfg.SecretToken)

	wrkr := worker.NewRoomWorker(log, msgQueue, msgSvc, cfg.Worker.MessageGroup)
	hub.RunWorker(wrkr.Run)

	d := dispatcher.NewDispatcher(log, hub, tracker, userSvc, roomSvc, msgSvc)

	srv := server.NewServer(log, cfg.Service.Name, cfg.Service.Addr, cfg.SecretToken, d, tokenSvc)
	if err := srv.Start(ctx); err != nil {
		log.Error("server exited", logging.Err(err))
	}
}
