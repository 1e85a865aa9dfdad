package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MrEthical07/memberauth"
	"github.com/spf13/cobra"
)

type statusReport struct {
	State        string              `json:"state"`
	Member       *memberauth.Account `json:"member,omitempty"`
	Cache        string              `json:"cache"`
	CacheLatency string              `json:"cache_latency,omitempty"`
	CacheError   string              `json:"cache_error,omitempty"`
	RestoreError string              `json:"restore_error,omitempty"`
}

func newStatusCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the persisted session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout)
			defer cancel()

			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			report := buildStatus(ctx, s)
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "state:   %s\n", report.State)
			if report.Member != nil {
				fmt.Fprintf(w, "member:  %s\n", describeAccount(report.Member))
			}
			fmt.Fprintf(w, "cache:   %s", report.Cache)
			switch {
			case report.CacheError != "":
				fmt.Fprintf(w, " (unreachable: %s)", report.CacheError)
			case report.CacheLatency != "":
				fmt.Fprintf(w, " (ping %s)", report.CacheLatency)
			}
			fmt.Fprintln(w)
			if report.RestoreError != "" {
				fmt.Fprintf(w, "note:    previous session was unreadable and has been cleared (%s)\n", report.RestoreError)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func buildStatus(ctx context.Context, s *session) statusReport {
	snap := s.store.Snapshot()
	report := statusReport{
		State:  snap.State().String(),
		Member: snap.Account,
		Cache:  s.backend,
	}
	if err := s.store.RestoreErr(); err != nil {
		report.RestoreError = err.Error()
	}
	if s.redis != nil {
		if rtt, err := s.redis.Ping(ctx); err != nil {
			report.CacheError = err.Error()
		} else {
			report.CacheLatency = rtt.String()
		}
	}
	return report
}
