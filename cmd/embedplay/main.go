package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/embedplay/embedplay/internal/analytics"
	"github.com/embedplay/embedplay/internal/geoip"
	"github.com/embedplay/embedplay/internal/persist"
	"github.com/embedplay/embedplay/internal/playerapi"
	"github.com/embedplay/embedplay/internal/server"
	"github.com/embedplay/embedplay/internal/session"
	"github.com/embedplay/embedplay/internal/store"
)

func main() {
	_ = godotenv.Load()

	port := getEnv("PORT", "8080")
	baseURL := getEnv("BASE_URL", "http://localhost:"+port)

	deps := session.Deps{
		Tracker:  analytics.NopTracker{},
		Reporter: store.LogReporter{},
		Clock:    clockwork.NewRealClock(),
	}

	if apiURL := os.Getenv("PLAYER_API_URL"); apiURL != "" {
		deps.API = playerapi.New(apiURL)
		log.Println("player API client enabled")
	} else {
		log.Println("PLAYER_API_URL unset, continuous play and availability checks disabled")
	}

	if profileURL := os.Getenv("PROFILE_API_URL"); profileURL != "" {
		deps.Profile = analytics.NewProfileClient(profileURL)
		log.Println("viewing history enabled")
	}

	if eventsURL := os.Getenv("EVENTS_URL"); eventsURL != "" {
		deps.Tracker = analytics.NewEventClient(eventsURL)
		log.Println("event tracking enabled")
	}

	var pinger server.Pinger
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		if client := persist.NewRedis(addr); client != nil {
			deps.Redis = client
			defer client.Close()
			pinger = redisPinger{client}
			log.Println("preference persistence enabled")
		}
	}

	if dbPath := os.Getenv("GEOIP_DB"); dbPath != "" {
		resolver, err := geoip.New(dbPath)
		if err != nil {
			log.Fatalf("geoip database failed to open: %v", err)
		}
		defer resolver.Close()
		deps.Geo = resolver
		deps.Regions = splitRegions(os.Getenv("SERVICE_REGIONS"))
		log.Printf("local service-area screening enabled (%d regions)", len(deps.Regions))
	}

	var shellFS fs.FS
	if dir := os.Getenv("SHELL_DIR"); dir != "" {
		shellFS = os.DirFS(dir)
		log.Printf("serving shell from %s", dir)
	} else {
		log.Println("SHELL_DIR unset, shell serving disabled")
	}

	srv := server.New(server.Config{
		Deps:    deps,
		Pinger:  pinger,
		ShellFS: shellFS,
		BaseURL: baseURL,
	})

	// Sessions are long-lived websockets, so only the handshake gets a
	// read deadline; the session loop manages its own liveness.
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("embedplay listening on :%s", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-shutdownCh
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}
	log.Println("shutdown complete")
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func splitRegions(raw string) []string {
	if raw == "" {
		return nil
	}
	var regions []string
	for _, r := range strings.Split(raw, ",") {
		if r = strings.TrimSpace(r); r != "" {
			regions = append(regions, r)
		}
	}
	return regions
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
