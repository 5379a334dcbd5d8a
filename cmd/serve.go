package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jsphweid/chordview/constants"
	"github.com/jsphweid/chordview/detect"
	"github.com/jsphweid/chordview/preview"
	"github.com/jsphweid/chordview/session"
	"github.com/jsphweid/chordview/web"
	"github.com/spf13/cobra"
)

var (
	listenAddr  string
	sessionIdle time.Duration
	origins     []string
	maxUpload   int64
)

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", constants.GetListenAddr(), "address to listen on (LISTEN_ADDR)")
	serveCmd.Flags().DurationVar(&sessionIdle, "session-idle", constants.GetSessionIdle(), "tear down sessions idle this long (SESSION_IDLE)")
	serveCmd.Flags().Int64Var(&maxUpload, "max-upload", constants.MaxUploadSize, "largest accepted upload in bytes")
	serveCmd.Flags().StringSliceVar(&origins, "cors-origin", nil, "allowed CORS origins, all when empty")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the chord detector page",
	Long:  `Serves the chord detector page. Uploads are forwarded to the detection service.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if maxUpload <= 0 {
			return fmt.Errorf("--max-upload must be positive, got %d", maxUpload)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	store, err := session.NewStore(detect.NewClient(serviceURL), preview.NewRegistry(), sessionIdle, slog.Default())
	if err != nil {
		return err
	}
	defer store.Close()

	ws := web.NewServer(store, slog.Default())
	ws.MaxUpload = maxUpload
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           ws.Handler(origins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", listenAddr, "service", serviceURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
