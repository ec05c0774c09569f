package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parkingQrAPI/handlers"
	"parkingQrAPI/internal/config"
	"parkingQrAPI/internal/database"
	"parkingQrAPI/middleware"
	"parkingQrAPI/services"

	_ "net/http/pprof"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	if cfg.IsDevelopment() {
		log.Printf("Running in development mode (backend: %s, CORS origin: %s)", cfg.DBType, cfg.CORSOrigin)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := database.New(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatal("Failed to open store:", err)
	}
	defer func() {
		log.Println("Closing store...")
		store.Close()
	}()
	log.Printf("Store ready (backend: %s)", cfg.DBType)

	twilioService := services.NewTwilioService(
		cfg.TwilioAccountSID,
		cfg.TwilioAuthToken,
		cfg.TwilioPhoneNumber,
		cfg.TwilioTimeout,
	)
	if twilioService.Enabled() {
		log.Println("Twilio integration enabled")
	} else {
		log.Println("Twilio not configured; call initiation runs in demo mode")
	}

	userService := services.NewUserService(store, cfg.FreePlanQRLimit)
	qrService := services.NewQRCodeService(store)
	callService := services.NewCallService(qrService, twilioService)

	userHandler := handlers.NewUserHandler(userService)
	qrHandler := handlers.NewQRCodeHandler(qrService, userService, cfg.BaseURL)
	callHandler := handlers.NewCallHandler(callService, cfg.BaseURL)
	webhookHandler := handlers.NewWebhookHandler(userService, cfg.StripeWebhookSecret)

	middleware.InitPrometheus()

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := store.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "store unavailable"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok", "message": "Server is running"}`))
	}).Methods("GET")

	api.HandleFunc("/user/upgrade", userHandler.UpgradeToPremium).Methods("POST")
	api.HandleFunc("/user/{email}", userHandler.GetUserInfo).Methods("GET")

	api.HandleFunc("/qr/generate", qrHandler.GenerateQRCode).Methods("POST")
	api.HandleFunc("/qr/{qrId}", qrHandler.GetQRCodeInfo).Methods("GET")

	api.HandleFunc("/call/initiate", callHandler.InitiateCall).Methods("POST")
	api.HandleFunc("/call/connect/{ownerPhone}", callHandler.ConnectCall).Methods("GET")
	api.HandleFunc("/call/status", callHandler.CallStatus).Methods("POST")

	r.HandleFunc("/webhooks/stripe", webhookHandler.HandleStripeWebhook).Methods("POST")

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{cfg.CORSOrigin}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorillaHandlers.AllowCredentials(),
	)

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
