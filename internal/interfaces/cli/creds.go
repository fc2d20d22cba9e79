package cli

import (
	"errors"
	"fmt"

	"github.com/example/srt-reserver/internal/application/usecases"
	"github.com/example/srt-reserver/internal/domain/user"
	"github.com/example/srt-reserver/internal/internaltypes"
	"github.com/spf13/cobra"
)

func newCredsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "creds",
		Short: "Manage the encrypted credential vault",
	}
	cmd.AddCommand(newCredsSetCmd(a))
	cmd.AddCommand(newCredsShowCmd(a))
	cmd.AddCommand(newCredsClearCmd(a))
	return cmd
}

func (a *app) credentialsService() (usecases.CredentialsService, error) {
	v, err := a.vault()
	if err != nil {
		return usecases.CredentialsService{}, err
	}
	return usecases.CredentialsService{Store: v}, nil
}

func newCredsSetCmd(a *app) *cobra.Command {
	var c user.Credentials
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store login and Telegram settings; omitted fields keep their saved value",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c == (user.Credentials{}) {
				return errors.New("nothing to store: pass at least one flag")
			}
			svc, err := a.credentialsService()
			if err != nil {
				return err
			}
			if _, err := svc.Update(c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved to %s\n", a.cfg.VaultPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&c.LoginID, "user", "", "SRT login id")
	cmd.Flags().StringVar(&c.Password, "psw", "", "SRT password")
	cmd.Flags().StringVar(&c.TelegramToken, "token", "", "Telegram bot token")
	cmd.Flags().StringVar(&c.TelegramChatID, "chat-id", "", "Telegram chat id")
	return cmd
}

func newCredsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show what the vault holds, secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.credentialsService()
			if err != nil {
				return err
			}
			c, err := svc.Get()
			if errors.Is(err, internaltypes.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "vault is empty")
				return nil
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "login id:         %s\n", orDash(c.LoginID))
			fmt.Fprintf(out, "password:         %s\n", mask(c.Password))
			fmt.Fprintf(out, "telegram token:   %s\n", mask(c.TelegramToken))
			fmt.Fprintf(out, "telegram chat id: %s\n", orDash(c.TelegramChatID))
			return nil
		},
	}
}

func newCredsClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the vault file",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.credentialsService()
			if err != nil {
				return err
			}
			if err := svc.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "vault cleared")
			return nil
		},
	}
}

func mask(s string) string {
	if s == "" {
		return "-"
	}
	return "********"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
