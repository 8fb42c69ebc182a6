package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/identity"
)

func NewRouter(handlers *Handlers, provider identity.Provider, handlerTimeout time.Duration) *gin.Engine {
	g := gin.New()
	g.Use(gin.Recovery())

	g.GET("/api/health", handlers.Health)

	protected := g.Group("/api", RequireAuth(provider))
	{
		protected.GET("/sectors", handlers.ListSectors)
		protected.POST("/news", withTimeout(handlerTimeout, handlers.FetchNews))
		protected.POST("/relevant", withTimeout(handlerTimeout, handlers.FilterRelevant))
		protected.POST("/enrich", withTimeout(handlerTimeout, handlers.Enrich))
		protected.POST("/run", withTimeout(handlerTimeout, handlers.Run))

		outreach := protected.Group("/outreach")
		outreach.POST("/used", handlers.RecordUsed)
		outreach.POST("/outcome", handlers.RecordOutcome)
		outreach.GET("/stats", handlers.Stats)
		outreach.GET("/history", handlers.History)
	}

	return g
}

func withTimeout(d time.Duration, fn gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			fn(c)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		fn(c)
	}
}

// Serve слушает addr до отмены контекста, потом дает запросам 10 секунд на завершение
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http api listening", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
