package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dirsort/internal/runlock"
	"github.com/ppiankov/dirsort/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var (
		flags        organizeFlags
		debounce     time.Duration
		poll         bool
		pollInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch --path <dir>",
		Short: "Keep a directory organized as files arrive",
		Long: `Organize the directory once, then watch it and organize again whenever new
files settle. Passes that move nothing are silent.

Uses filesystem notifications by default; --poll compares the directory
listing on an interval instead (useful on network mounts).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings()
			if err != nil {
				return err
			}
			if err := flags.applySettings(cmd, cfg); err != nil {
				return err
			}
			if w := cfg.Watch; w != nil {
				if !cmd.Flags().Changed("debounce") && w.Debounce > 0 {
					debounce = w.Debounce
				}
				if !cmd.Flags().Changed("poll") && w.Poll {
					poll = true
				}
				if !cmd.Flags().Changed("poll-interval") && w.PollInterval > 0 {
					pollInterval = w.PollInterval
				}
			}
			flags.tui = false

			s, err := newSession(cmd, flags, cfg)
			if err != nil {
				return err
			}
			defer s.close()

			lock, err := runlock.Acquire(s.root)
			if err != nil {
				return err
			}
			defer lock.Release()

			ctx, stop := interruptContext(cmd.Context(), s.errOut)
			defer stop()

			first := true
			w, err := watch.New(watch.Config{
				Root:         s.root,
				Debounce:     debounce,
				PollMode:     poll,
				PollInterval: pollInterval,
				Run: func(ctx context.Context) error {
					// the first pass always reports, later idle passes stay quiet
					s.skipIdle = !first
					first = false
					_, err := s.run(ctx, stop)
					return err
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(s.errOut, "watching %s (ctrl+c to stop)\n", s.root)
			return w.Run(ctx)
		},
	}

	flags.bind(cmd)
	_ = cmd.MarkFlagRequired("path")
	cmd.Flags().DurationVar(&debounce, "debounce", 2*time.Second, "quiet period after the last change before organizing")
	cmd.Flags().BoolVar(&poll, "poll", false, "poll the directory instead of using filesystem notifications")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 5*time.Second, "poll interval with --poll")

	return cmd
}
