package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joestump/room-reviews/internal/api"
	"github.com/joestump/room-reviews/internal/auth"
	"github.com/joestump/room-reviews/internal/build"
	"github.com/joestump/room-reviews/internal/config"
	"github.com/joestump/room-reviews/internal/log"
	"github.com/joestump/room-reviews/internal/policy"
	"github.com/joestump/room-reviews/internal/service"
	"github.com/joestump/room-reviews/internal/upload"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flush, err := setupLogger(cfg)
			if err != nil {
				return err
			}
			defer flush()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			b, err := openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = b.close() }()

			tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
			if err != nil {
				return err
			}

			uploads, err := upload.New(ctx, upload.Config{
				Driver: cfg.Upload.Driver,
				Dir:    cfg.Upload.Dir,
				S3: upload.S3Config{
					Bucket:    cfg.Upload.S3.Bucket,
					Region:    cfg.Upload.S3.Region,
					Endpoint:  cfg.Upload.S3.Endpoint,
					AccessKey: cfg.Upload.S3.AccessKey,
					SecretKey: cfg.Upload.S3.SecretKey,
				},
			}, b.mongoDB)
			if err != nil {
				return err
			}

			p := policy.Policy{AdminOverride: cfg.Authz.AdminOverride}
			router := api.NewRouter(api.Deps{
				Auth:    auth.NewMiddleware(tokens, b.users, p),
				Rooms:   service.NewRoomService(b.rooms, b.reviews, p),
				Reviews: service.NewReviewService(b.rooms, b.reviews, p),
				Users:   b.users,
				Uploads: uploads,
				UploadOptions: api.UploadOptions{
					MaxBytes:      cfg.Upload.MaxBytes,
					PublicBaseURL: cfg.Upload.PublicBaseURL,
				},
			})

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info(ctx, "listening",
					log.String("addr", cfg.HTTP.Addr),
					log.String("version", build.Version),
					log.String("db_driver", cfg.DB.Driver),
					log.String("upload_driver", cfg.Upload.Driver),
				)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info(context.Background(), "shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
