// Command quill-server runs the document backend: it wires the database,
// the AI and PDF collaborators, and the domain services, runs the draft
// session sweeper, and serves the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/quillworks/quill/internal/api"
	"github.com/quillworks/quill/internal/config"
	"github.com/quillworks/quill/internal/server"
	"github.com/quillworks/quill/pkg/ai/openai"
	"github.com/quillworks/quill/pkg/database"
	"github.com/quillworks/quill/pkg/document"
	"github.com/quillworks/quill/pkg/draft"
	"github.com/quillworks/quill/pkg/pdf/pdfshift"
	"github.com/quillworks/quill/pkg/public"
	"github.com/quillworks/quill/pkg/session"
	"github.com/quillworks/quill/pkg/share"
	"github.com/quillworks/quill/pkg/usage"
	"github.com/quillworks/quill/pkg/version"
)

// sweepInterval is how often expired draft sessions are purged.
const sweepInterval = 15 * time.Minute

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		return 1
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "quill",
		Level: hclog.LevelFromString(cfg.LogLevel),
	})

	db, err := database.Connect(cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return 1
	}

	recorder := usage.NewDBRecorder(db, logger)

	srv := server.Server{
		Config: cfg,
		DB:     db,
		Logger: logger,
	}

	srv.Documents = document.NewService(db, document.Config{Logger: logger})
	srv.Sessions = session.NewService(db, srv.Documents, session.Config{
		TTL:    cfg.Sessions.TTL,
		Logger: logger,
	})
	srv.Versions = version.NewService(db, version.Config{
		RetentionCap: cfg.Versions.RetentionCap,
		Logger:       logger,
	})
	srv.Shares = share.NewService(db, share.Config{
		DefaultTTL: cfg.Share.DefaultTTL,
		Logger:     logger,
	})
	srv.Public = public.NewService(db, srv.Shares, public.Config{Logger: logger})

	if cfg.AI.APIKey != "" {
		provider, err := openai.NewProvider(openai.Config{
			APIKey:  cfg.AI.APIKey,
			BaseURL: cfg.AI.BaseURL,
			Model:   cfg.AI.Model,
			Logger:  logger,
		})
		if err != nil {
			logger.Error("failed to configure AI provider", "error", err)
			return 1
		}
		srv.Drafts = draft.NewService(provider, recorder, draft.Config{
			MaxAttempts: cfg.AI.MaxAttempts,
			RetryDelay:  cfg.AI.RetryDelay,
			Logger:      logger,
		})
		logger.Info("AI drafting enabled", "provider", provider.Name())
	} else {
		logger.Warn("no AI API key configured, drafting disabled")
	}

	if cfg.PDF.APIKey != "" {
		renderer, err := pdfshift.NewRenderer(pdfshift.Config{
			APIKey:  cfg.PDF.APIKey,
			BaseURL: cfg.PDF.BaseURL,
			Logger:  logger,
		})
		if err != nil {
			logger.Error("failed to configure PDF renderer", "error", err)
			return 1
		}
		srv.Renderer = renderer
		logger.Info("PDF export enabled", "provider", renderer.Name())
	} else {
		logger.Warn("no PDF API key configured, export disabled")
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go sweepSessions(ctx, srv.Sessions, logger)

	mux := http.NewServeMux()
	mux.Handle("/health", api.HealthHandler())
	mux.Handle("/api/v1/shared/resumes/", api.SharedResumeHandler(srv))

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		logger.Error("server error", "error", err)
		return 1
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return 1
	}
	return 0
}

// sweepSessions periodically deletes draft sessions whose confirmation
// window has long passed.
func sweepSessions(ctx context.Context, sessions *session.Service, logger hclog.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.PurgeExpired(ctx, 24*time.Hour)
			if err != nil {
				logger.Warn("session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("purged expired draft sessions", "count", n)
			}
		}
	}
}
