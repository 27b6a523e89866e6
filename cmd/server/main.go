package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/vergon/rgr-api/internal/auth"
	"github.com/vergon/rgr-api/internal/config"
	"github.com/vergon/rgr-api/internal/database"
	"github.com/vergon/rgr-api/internal/handler"
	"github.com/vergon/rgr-api/internal/queue"
	"github.com/vergon/rgr-api/internal/repository"
	"github.com/vergon/rgr-api/internal/router"
	"github.com/vergon/rgr-api/internal/service"
)

func main() {
	// A missing .env is fine; production gets its variables from the
	// deployment environment.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBConnLimit)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	companies := repository.NewCompanyRepo(db)
	persons := repository.NewPersonRepo(db)
	blacklist := repository.NewTokenBlacklistRepo(db)
	audits := repository.NewAuditRepo(db)

	codec, err := auth.NewCodec(auth.Config{
		Secret:     cfg.JWTSecret,
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	})
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}
	authSvc := auth.NewService(codec, users, blacklist)
	gate := auth.NewGate(roles)
	trail := service.NewAuditTrail(audits)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Deps{
		Auth:      handler.NewAuthHandler(authSvc, trail),
		Companies: handler.NewCompanyHandler(companies),
		Persons:   handler.NewPersonHandler(persons),
		Users:     handler.NewUserHandler(users, roles, cfg.BcryptCost),
		Audits:    handler.NewAuditHandler(audits),
		Health:    handler.NewHealthHandler(db),
		Service:   authSvc,
		Gate:      gate,
		AuditSink: trail,
		RateLimit: config.LoadRateLimitConfig(),
		Redis:     rdb,
	})

	// Drain audit events into logs/audit.log in the background.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	// Expired blacklist rows are dead weight; sweep them hourly.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if n, err := blacklist.PruneExpired(ctx); err != nil {
				log.Printf("blacklist prune failed: %v", err)
			} else if n > 0 {
				log.Printf("blacklist prune removed %d expired tokens", n)
			}
			cancel()
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
