package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mailroom/mailroom/internal/api"
	"github.com/mailroom/mailroom/internal/config"
	"github.com/mailroom/mailroom/pkg/logger"
	"github.com/mailroom/mailroom/pkg/mailer"
	resendmailer "github.com/mailroom/mailroom/pkg/mailer/resend"
	"github.com/mailroom/mailroom/templates"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewWithSentry(logger.ParseLevel(cfg.LogLevel), cfg.Sentry)
	slog.SetDefault(log)

	templateFS, err := resolveTemplates(cfg)
	if err != nil {
		return err
	}
	renderer := mailer.NewRenderer(templateFS)

	var sender mailer.Sender
	if !cfg.Mailer.Testing {
		s, err := resendmailer.New(cfg.Resend)
		if err != nil {
			return err
		}
		sender = s
	}

	svc, err := mailer.NewService(sender, renderer, nil, cfg.Mailer, log)
	if err != nil {
		return err
	}

	var company *mailer.Company
	if cfg.CompanyProfile != "" {
		company, err = config.LoadCompanyProfile(cfg.CompanyProfile)
		if err != nil {
			return err
		}
	}

	handler := api.NewHandler(svc, company, log)
	router := api.NewRouter(handler, cfg.APIKey, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.Int("port", cfg.Port), slog.Bool("testing", cfg.Mailer.Testing))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// resolveTemplates picks the on-disk template directory when one is
// configured, the embedded defaults otherwise.
func resolveTemplates(cfg *config.Config) (fs.FS, error) {
	if cfg.TemplatesDir == "" {
		return templates.FS, nil
	}
	info, err := os.Stat(cfg.TemplatesDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: template directory %s does not exist", mailer.ErrConfiguration, cfg.TemplatesDir)
	}
	return os.DirFS(cfg.TemplatesDir), nil
}
