package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/platformerkit/server/api/rest"
	"github.com/kasuganosora/platformerkit/server/api/sse"
	"github.com/kasuganosora/platformerkit/server/config"
	dbadapter "github.com/kasuganosora/platformerkit/server/db"
	"github.com/kasuganosora/platformerkit/server/events"
	"github.com/kasuganosora/platformerkit/server/game/world"
	"github.com/kasuganosora/platformerkit/server/journal"
	mw "github.com/kasuganosora/platformerkit/server/middleware"
	"github.com/kasuganosora/platformerkit/server/model"
	"github.com/kasuganosora/platformerkit/server/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; debug API is disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Event hub ----
	hub := events.NewHub(256)
	listeners := []world.TransitionFunc{hub.Listen}

	// ---- Journal ----
	var journalSvc *journal.Service
	if cfg.Journal.Enabled {
		db, err := dbadapter.Open(cfg.Database, logger)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		if err := model.AutoMigrate(db); err != nil {
			log.Fatalf("db migrate: %v", err)
		}
		logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

		journalSvc = journal.New(db, journal.Options{
			Buffer:        cfg.Journal.Buffer,
			BatchSize:     cfg.Journal.BatchSize,
			FlushInterval: cfg.Journal.FlushInterval,
		}, logger)
		defer journalSvc.Stop(context.Background())
		listeners = append(listeners, journalSvc.Listen)
	}

	// ---- World ----
	lvl, err := world.LoadLevel(cfg.Sim.LevelPath)
	if err != nil {
		log.Fatalf("level: %v", err)
	}
	w, err := world.FromLevel(lvl, world.DirBrains(cfg.Sim.BrainDir), cfg.Sim.Step(), logger, listeners...)
	if err != nil {
		log.Fatalf("world: %v", err)
	}

	loop := scheduler.NewLoop("world", cfg.Sim.Step(), w.Tick, logger)
	if err := loop.Start(ctx); err != nil {
		log.Fatalf("loop: %v", err)
	}
	defer loop.Stop()

	// ---- Periodic Scheduler Tasks ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	sched.AddTicker("sim_stats", time.Minute, func() {
		alive := 0
		for _, s := range w.Snapshots() {
			if !s.Dead {
				alive++
			}
		}
		fields := []zap.Field{
			zap.Uint64("tick", w.TickCount()),
			zap.Int("alive", alive),
			zap.Uint64("loop_panics", loop.Panics()),
			zap.Uint64("loop_dropped", loop.Dropped()),
			zap.Int("event_subscribers", hub.Subscribers(events.TopicTransition)),
			zap.Int64("events_dropped", hub.Dropped()),
		}
		if journalSvc != nil {
			fields = append(fields, zap.Int64("journal_dropped", journalSvc.Dropped()))
		}
		logger.Info("sim stats", fields...)
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	whitelist, err := mw.IPWhitelist(cfg.Security.AllowedIPs)
	if err != nil {
		log.Fatalf("security: %v", err)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger, "/health"), mw.Recovery(logger))
	r.Use(mw.RateLimit(ctx, rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok", "tick": w.TickCount()})
	})

	// ---- REST API routes ----
	charH := apirest.NewCharacterHandler(w, logger)
	adminH := apirest.NewAdminHandler(ctx, w, loop, sched, journalSvc, logger)

	api := r.Group("/api")
	api.Use(whitelist, mw.AdminKey(cfg.Server.AdminKey))
	{
		charsG := api.Group("/characters")
		charsG.GET("", charH.List)
		charsG.GET("/:id", charH.Detail)
		charsG.GET("/:id/tree", charH.Tree)
		charsG.POST("/:id/hit", charH.Hit)

		if journalSvc != nil {
			transH := apirest.NewTransitionHandler(journalSvc, logger)
			api.GET("/transitions", transH.List)
		}

		sseH := sse.NewHandler(hub, logger)
		api.GET("/events", sseH.ServeSSE)

		adminG := api.Group("/admin")
		adminG.GET("/metrics", adminH.Metrics)
		adminG.POST("/pause", adminH.Pause)
		adminG.POST("/resume", adminH.Resume)
		adminG.POST("/step", adminH.Step)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("Server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server: %v", err)
	}
	logger.Info("Server stopped", zap.Uint64("tick", w.TickCount()))
}
