package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/familyfinance/finchat/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "finchat",
		Short: "Talk to the finchat finance assistant",
		Long: `finchat is a command-line client for the finchat server.

Log in once, export the printed token as FINCHAT_TOKEN, then ask things like
"recebi 500 no Nubank" and answer "sim" or "não" to confirm.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}

	rootCmd.PersistentFlags().String("server", "http://localhost:8080", "finchat server base URL")
	rootCmd.PersistentFlags().String("token", "", "bearer token (env FINCHAT_TOKEN)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(balanceCmd())

	return rootCmd
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	viper.SetEnvPrefix("FINCHAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := logging.Setup(viper.GetString("logging.level"), "console"); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	slog.Debug("Using server", "url", viper.GetString("server"))
	return nil
}

func newClientFromConfig() *Client {
	return NewClient(viper.GetString("server"), viper.GetString("token"))
}
