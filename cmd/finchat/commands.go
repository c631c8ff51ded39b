package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errNoToken = errors.New("no token: run 'finchat login' and set FINCHAT_TOKEN or pass --token")

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a bearer token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := newClientFromConfig().Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Send a message to the assistant",
		Example: `  finchat ask "Adicionar 500 reais no Itaú"
  finchat ask sim`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ask(cmd, strings.Join(args, " "))
		},
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the current balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ask(cmd, "saldo")
		},
	}
}

func ask(cmd *cobra.Command, message string) error {
	if viper.GetString("token") == "" {
		return errNoToken
	}
	reply, err := newClientFromConfig().Ask(cmd.Context(), message)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}
