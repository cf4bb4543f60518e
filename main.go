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

	"nonact/admin"
	"nonact/auth"
	"nonact/blob"
	"nonact/booking"
	"nonact/config"
	"nonact/live"
	"nonact/mailer"
	"nonact/middleware"
	"nonact/profile"
	"nonact/ratelim"
	"nonact/rdx"
	"nonact/register"
	"nonact/routes"
	"nonact/staff"
	"nonact/store"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s from %s – %v", r.Method, r.RequestURI, r.RemoteAddr, time.Since(start))
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := store.NewMongo(ctx, cfg.MongoURI)
	cancel()
	if err != nil {
		log.Fatalf("❌ mongo connect: %v", err)
	}

	cache := rdx.New(cfg.RedisAddr)
	uploads := blob.NewDisk("static", cfg.AppURL)

	var mail mailer.Mailer
	if cfg.SMTPHost != "" {
		mail = &mailer.SMTP{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.MailFrom,
		}
	} else {
		log.Println("SMTP_HOST not set; confirmation mails go to the log")
		mail = mailer.LogOnly{}
	}

	hub := live.NewHub()
	go hub.Run()

	handlers := &routes.Handlers{
		Auth:     &auth.Provider{Store: st, Cache: cache, Cfg: cfg},
		Register: register.NewHandler(&register.Coordinator{Store: st, Blob: uploads, Mail: mail, AppURL: cfg.AppURL, TTL: cfg.PendingTTL}),
		Staff:    &staff.Handler{Store: st, Cache: cache},
		Profile:  profile.NewHandler(st),
		Booking:  booking.NewHandler(st),
		Admin:    admin.NewHandler(st, cache, hub),
		Hub:      hub,
	}

	gate := &middleware.Gate{Cfg: cfg, Cache: cache}
	rateLimiter := ratelim.New(5, 10)

	router := httprouter.New()
	router.GET("/health", Index)
	routes.RoutesWrapper(router, handlers, gate, rateLimiter)
	routes.AddStaticRoutes(router, "static")

	// middleware chain: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server listening on %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("🛑 Shutdown signal received; shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Graceful shutdown failed: %v", err)
	}
	if err := st.Close(shutdownCtx); err != nil {
		log.Printf("mongo disconnect: %v", err)
	}

	log.Println("✅ Server stopped cleanly")
}
