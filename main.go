// Package main runs the library reservation API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"library/app/echoServer"
	"library/app/echoServer/controller"
	bookctrl "library/app/echoServer/controller/book"
	reservationctrl "library/app/echoServer/controller/reservation"
	"library/app/echoServer/validation"
	"library/config"
	bookrepo "library/repository/book"
	eventsrepo "library/repository/events"
	reservationrepo "library/repository/reservation"
	userrepo "library/repository/user"
	booksvc "library/service/book"
	reservationsvc "library/service/reservation"
	usersvc "library/service/user"
	"library/util/database"
	"library/util/redisx"
)

func main() {

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", cfg.ServiceName, "env", cfg.Env)
	slog.SetDefault(log)

	// DB: pgx pool
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			log.Error("migration failed", "err", err)
			os.Exit(1)
		}
	}

	// events
	var pub eventsrepo.Publisher = eventsrepo.Noop{}
	if cfg.EventsEnabled() {
		p := eventsrepo.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.ServiceName, 1024, log)
		p.Start()
		defer p.WaitClosed()
		defer p.Close()
		pub = p
		log.Info("kafka events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	rr := reservationrepo.New(db)

	// services
	us := usersvc.New(ur)
	bs := booksvc.New(br)
	rs := reservationsvc.New(db, rr, us, bs, pub, log)

	// overdue notices
	if cfg.OverdueScanInterval > 0 {
		var dedup reservationsvc.Claimer
		if cfg.RedisAddr != "" {
			rdb := redisx.New(cfg.RedisAddr)
			defer rdb.Close()
			dedup = redisx.NewDedup(rdb, redisx.TTLOverdueNotice)
		}
		n := reservationsvc.NewNotifier(rr, pub, dedup, log)
		// joined before the producer's deferred Close
		var wg sync.WaitGroup
		defer wg.Wait()
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.Run(ctx, cfg.OverdueScanInterval)
		}()
		log.Info("overdue notifier started", "every", cfg.OverdueScanInterval.String(), "dedup", dedup != nil)
	}

	// controllers
	userC := controller.NewUserController(us, log)
	bookC := &bookctrl.Controller{Svc: bs, Log: log}
	reservationC := &reservationctrl.Controller{Svc: rs, Log: log}

	// echo
	e := echo.New()
	e.HideBanner = true
	echoServer.RegisterMiddlewares(e, log)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":  "down",
				"message": "database unreachable",
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	echoServer.Register(e, echoServer.C{
		User:        userC,
		Book:        bookC,
		Reservation: reservationC,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		log.Info("starting server", "port", port)
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
	log.Info("server stopped")
}
