package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Zacy-Sokach/DentalXray/internal/logger"
	"github.com/Zacy-Sokach/DentalXray/internal/mockserver"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	cfg := mockserver.Config{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local mock analysis service",
		Long: `serve starts a stand-in for the analysis service. It accepts the same
POST /process upload, stores the image and returns it with a canned report.
No annotation or inference is performed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.NewConsole(true)
			if err != nil {
				return fmt.Errorf("初始化日志失败: %w", err)
			}
			defer log.Sync()

			srv, err := mockserver.New(cfg, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Run()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", mockserver.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&cfg.ImagesDir, "images-dir", mockserver.DefaultImagesDir, "directory for uploaded images")
	cmd.Flags().StringVar(&cfg.PublicURL, "public-url", "", "URL prefix for returned image links (default: derived from the request)")

	return cmd
}
