package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/artisan-crm/internal/config"
	"github.com/xavierca1/artisan-crm/internal/infra/auth"
	"github.com/xavierca1/artisan-crm/internal/infra/database"
	"github.com/xavierca1/artisan-crm/internal/infra/http/handlers"
	"github.com/xavierca1/artisan-crm/internal/infra/http/middleware"
	"github.com/xavierca1/artisan-crm/internal/infra/mail"
	"github.com/xavierca1/artisan-crm/internal/infra/queue"
	"github.com/xavierca1/artisan-crm/internal/realtime"
	"github.com/xavierca1/artisan-crm/internal/usecase"
)

func main() {
	cfg := config.Load()

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// 1. Repositories
	leadRepo := database.NewLeadRepository(db)
	userRepo := database.NewUserRepository(db)

	// 2. Realtime hub + broadcaster
	hub := realtime.NewHub()
	broadcaster := realtime.NewBroadcaster(hub)
	defer broadcaster.Close()

	// 3. Optional event mirror + mail notifier
	var mirror usecase.EventMirrorInterface
	var rabbitConn *amqp.Connection
	if cfg.AMQPURL != "" {
		rabbit, err := queue.NewRabbitMQ(cfg.AMQPURL)
		if err != nil {
			log.Printf("rabbitmq unavailable, lead events will not be mirrored: %v", err)
		} else {
			defer rabbit.Close()
			rabbitConn = rabbit.Conn
			mirror = queue.NewProducer(rabbit.Conn, rabbit.Ch)

			if cfg.MailHost != "" && cfg.LeadNotifyTo != "" {
				sender := mail.NewEmailSender(
					cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass,
					cfg.MailFrom, cfg.LeadNotifyTo,
				)
				worker := queue.NewWorker(rabbit.Ch, sender)
				go worker.Start(queue.QueueName)
			}
		}
	}

	// 4. UseCases
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	leadUC := usecase.NewLeadUseCase(leadRepo, broadcaster, mirror)

	// 5. Handlers
	leadHandler := handlers.NewLeadHandler(leadUC)
	authHandler := handlers.NewAuthHandler(userRepo, tokens)
	wsHandler := handlers.NewWSHandler(hub)
	healthHandler := handlers.NewHealthHandler(db, rabbitConn)

	loginLimiter := middleware.NewRateLimiter(10, time.Minute) // 10 req/min per IP

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Route("/auth", func(r chi.Router) {
		r.Use(loginLimiter.Handler)
		r.Post("/login", authHandler.Login)
	})

	r.Route("/leads", func(r chi.Router) {
		r.Use(middleware.BearerAuth(tokens))
		r.Get("/export-leads", leadHandler.Export)
		r.Post("/", leadHandler.Create)
		r.Get("/", leadHandler.List)
		r.Get("/id/{id}", leadHandler.Get)
		r.Put("/id/{id}", leadHandler.Update)
		r.Delete("/id/{id}", leadHandler.Delete)
	})

	r.Get("/ws", wsHandler.Handle)
	r.Get("/health", healthHandler.Handle)
	r.Get("/db-check", healthHandler.DBCheck)
	r.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.Port
	log.Printf("lead management API listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}
