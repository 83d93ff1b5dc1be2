package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sonu/mediashare/internal/config"
	"github.com/sonu/mediashare/internal/gallery"
	"github.com/sonu/mediashare/internal/handlers"
	"github.com/sonu/mediashare/internal/notify"
	"github.com/sonu/mediashare/internal/storage"
	"github.com/sonu/mediashare/internal/tracing"
)

func main() {
	log.Println("Starting MediaShare service...")

	// A .env file is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Service: %s, Port: %s", cfg.ServiceName, cfg.ServicePort)

	// Initialize OpenTelemetry tracing
	shutdownTracer, err := tracing.InitTracer(cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	router := mux.NewRouter()

	// Health check endpoint (no tracing needed)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// When required credentials or endpoints are missing, the API stays up
	// but every operation short-circuits with the same condition. No
	// retries: the deployment has to be fixed.
	if err := cfg.Validate(); err != nil {
		log.Printf("WARNING: %v", err)
		log.Printf("All API operations will report the configuration error until it is resolved")
		router.PathPrefix("/api/").Handler(handlers.NotConfigured(err))
		serve(router, cfg.ServicePort)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize blob store
	log.Println("Connecting to blob store...")
	blobStore, err := storage.NewBlobStore(cfg.BlobEndpoint, cfg.BlobAccessKey, cfg.BlobSecretKey, cfg.BlobUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize blob store: %v", err)
	}
	if err := blobStore.EnsureContainers(ctx); err != nil {
		log.Fatalf("Failed to ensure containers exist: %v", err)
	}
	log.Println("Blob store initialized, containers verified")

	// Initialize metadata store
	log.Println("Connecting to metadata store...")
	metadataStore, err := storage.NewMetadataStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to initialize metadata store: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metadataStore.Close(ctx); err != nil {
			log.Printf("Error closing metadata store: %v", err)
		}
	}()
	log.Println("Metadata store initialized")

	// Initialize notification bus
	var bus notify.Bus
	if addr := cfg.GetRedisAddr(); addr != "" {
		log.Println("Connecting to Redis...")
		redisBus, err := notify.NewRedisBus(addr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to initialize Redis bus: %v", err)
		}
		bus = redisBus
		log.Println("Redis notification bus initialized")
	} else {
		bus = notify.NewMemoryBus()
		log.Println("Using in-process notification bus")
	}
	defer bus.Close()

	// Initialize coordinators
	uploader := gallery.NewUploader(metadataStore, blobStore)
	reconciler := gallery.NewReconciler(metadataStore, blobStore)
	deleter := gallery.NewDeleter(metadataStore, blobStore)

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(uploader, bus)
	listHandler := handlers.NewListHandler(reconciler)
	itemHandler := handlers.NewItemHandler(metadataStore)
	deleteHandler := handlers.NewDeleteHandler(deleter, bus)
	eventsHandler := handlers.NewEventsHandler(bus)

	// Media operations with tracing
	router.Handle("/api/media", otelhttp.NewHandler(uploadHandler, "POST /api/media")).Methods("POST")
	router.Handle("/api/media", otelhttp.NewHandler(listHandler, "GET /api/media")).Methods("GET")
	router.Handle("/api/media/{id}", otelhttp.NewHandler(http.HandlerFunc(itemHandler.Get), "GET /api/media/{id}")).Methods("GET")
	router.Handle("/api/media/{id}", otelhttp.NewHandler(http.HandlerFunc(itemHandler.Update), "PATCH /api/media/{id}")).Methods("PATCH")
	router.Handle("/api/media/{container}/{blobName}", otelhttp.NewHandler(deleteHandler, "DELETE /api/media/{container}/{blobName}")).Methods("DELETE")

	// Event stream is long-lived; no per-request tracing
	router.Handle("/api/events", eventsHandler).Methods("GET")

	serve(router, cfg.ServicePort)
}

func serve(router *mux.Router, port string) {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 30 * time.Second,
		// Large uploads and the event stream can legitimately outlive a
		// short read or write window, so full-request timeouts stay off
		// and only headers and idle connections are bounded.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
