// Package dashboard serves a small operational status API for a running
// Switchboard daemon.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/switchboard/internal/store"
)

// StatusProvider exposes live counters from the running daemon.
type StatusProvider interface {
	BusyCount() int
	PendingGroups() int
}

// StartOpts holds configuration for the dashboard server.
type StartOpts struct {
	Store    *store.Store
	Provider StatusProvider
	Port     int
	Out      io.Writer
}

// Start launches the dashboard HTTP server. It blocks until ctx is cancelled,
// then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Store == nil {
		return fmt.Errorf("dashboard: store is required")
	}
	if opts.Provider == nil {
		return fmt.Errorf("dashboard: provider is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	router := buildRouter(opts.Store, opts.Provider)

	addr := fmt.Sprintf(":%d", opts.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Dashboard running at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// buildRouter sets up the Gin router with all dashboard routes.
func buildRouter(st *store.Store, provider StatusProvider) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	started := time.Now()

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/api/status", func(c *gin.Context) {
		stored, err := st.Count()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"uptime_seconds":       int(time.Since(started).Seconds()),
			"busy_conversations":   provider.BusyCount(),
			"pending_groups":       provider.PendingGroups(),
			"stored_conversations": stored,
		})
	})

	return router
}
