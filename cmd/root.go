package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jhamir14/restaurant/internal/config"
	"github.com/jhamir14/restaurant/internal/constants"
	"github.com/jhamir14/restaurant/internal/log"
	notificationCmd "github.com/jhamir14/restaurant/notification/cmd"
	terminalCmd "github.com/jhamir14/restaurant/terminal/cmd"
	userCmd "github.com/jhamir14/restaurant/user/cmd"
)

func Start() {
	logger := log.Console(zerolog.InfoLevel).
		With().
		Str(log.KeyAppName, constants.AppMain).
		Str(log.KeyTag, "main Start").
		Logger()

	logger.Trace().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Trace().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	var (
		userID int64
		ttl    time.Duration
	)
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get(cmd.Context(), constants.AppApiService)
			return userCmd.RunIssueToken(cmd.Context(), cfg, cmd.OutOrStdout(), userID, ttl)
		},
	}
	tokenCmd.Flags().Int64Var(&userID, "user-id", 0, "user the token is issued for")
	tokenCmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "how long the token is valid")
	_ = tokenCmd.MarkFlagRequired("user-id")

	rootCmd := &cobra.Command{Use: constants.AppMain, SilenceUsage: true}
	commands := []*cobra.Command{
		{
			Use:   "api",
			Short: "Run api service",
			Run: func(cmd *cobra.Command, args []string) {
				runApiService(cmd.Context())
			},
		},
		{
			Use:   "notification",
			Short: "Run notification service",
			Run: func(cmd *cobra.Command, args []string) {
				notificationCmd.RunNotificationService(cmd.Context())
			},
		},
		tokenCmd,
		terminalCmd.NewCommand(),
	}
	rootCmd.AddCommand(commands...)
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
