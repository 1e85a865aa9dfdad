package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/MrEthical07/memberauth"
	promexport "github.com/MrEthical07/memberauth/metrics/export/prometheus"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Hold a session open and print every change",
		Long: `Restore the session, print it, then print every state change until
interrupted. Commands are read from stdin, one per line:

  login EMAIL PASSWORD
  logout
  status
  quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			out := &lockedWriter{w: cmd.OutOrStdout()}

			if metricsAddr != "" {
				srv := &http.Server{
					Addr:              metricsAddr,
					Handler:           metricsMux(s.store),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						a.logger.Error().Err(err).Msg("metrics server stopped")
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
				a.logger.Info().Str("addr", metricsAddr).Msg("serving metrics")
			}

			changes := s.store.Watch(ctx, 0)
			done := make(chan struct{})
			go func() {
				defer close(done)
				for snap := range changes {
					out.printf("[%s] %s %s\n", time.Now().Format(time.TimeOnly), snap.State(), describeAccount(snap.Account))
				}
			}()

			err = runCommands(ctx, s.store, cmd.InOrStdin(), out, a.cfg.Timeout)
			stop()
			<-done
			return err
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

func metricsMux(store *memberauth.Store) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promexport.NewExporter(store).Handler())
	return mux
}

// runCommands executes stdin commands until quit, EOF or ctx is done.
func runCommands(ctx context.Context, store *memberauth.Store, in io.Reader, out *lockedWriter, timeout time.Duration) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
			if !ok {
				return nil
			}
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		opCtx, cancel := context.WithTimeout(ctx, timeout)
		quit := runCommand(opCtx, store, fields, out)
		cancel()
		if quit {
			return nil
		}
	}
}

func runCommand(ctx context.Context, store *memberauth.Store, fields []string, out *lockedWriter) (quit bool) {
	switch fields[0] {
	case "login":
		if len(fields) != 3 {
			out.printf("usage: login EMAIL PASSWORD\n")
			return false
		}
		if err := store.Login(ctx, fields[1], fields[2]); err != nil {
			out.printf("login failed: %v\n", err)
		}
	case "logout":
		if err := store.Logout(ctx); err != nil {
			out.printf("logout: %v\n", err)
		}
	case "status":
		snap := store.Snapshot()
		out.printf("%s %s\n", snap.State(), describeAccount(snap.Account))
	case "quit", "exit":
		return true
	default:
		out.printf("unknown command %q\n", fields[0])
	}
	return false
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format, args...)
}
