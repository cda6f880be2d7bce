// Package keepalive pings the service's own health endpoint on an interval
// so free-tier hosts do not idle the instance out.
package keepalive

import (
	"context"
	"log"
	"net/http"
	"time"

	"tribofy/internal/config"
)

// Run blocks until ctx is cancelled, issuing a GET against the configured
// URL every interval. A missing URL disables the pinger.
func Run(ctx context.Context, cfg *config.KeepAliveConfig) {
	if cfg == nil || cfg.URL == "" {
		log.Printf("Keepalive disabled: no URL configured")
		return
	}

	client := &http.Client{Timeout: 30 * time.Second}
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Printf("Keepalive pinging %s every %s", cfg.URL, cfg.Interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("Keepalive stopped")
			return
		case <-ticker.C:
			ping(ctx, client, cfg.URL)
		}
	}
}

func ping(ctx context.Context, client *http.Client, url string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("Keepalive request build failed: %v", err)
		return
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Printf("Keepalive ping failed: %v", err)
		return
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("Keepalive ping returned status %d", resp.StatusCode)
	}
}
