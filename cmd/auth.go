package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/taskmate/internal/config"
	"github.com/bnema/taskmate/internal/domain"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage language model API keys",
	}

	cmd.AddCommand(newAuthStatusCmd(app), newAuthSetKeyCmd(app), newAuthRemoveKeyCmd(app))

	return cmd
}

func newAuthSetKeyCmd(app *app) *cobra.Command {
	var provider string
	var value string

	cmd := &cobra.Command{
		Use:   "set-key",
		Short: "Store an API key for a provider",
		Long:  "Stores the key under the secrets directory. Environment variables (OPENAI_API_KEY, ANTHROPIC_API_KEY) still take precedence. Without --value the key is read from stdin.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateProvider(provider); err != nil {
				return err
			}

			if value == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read api key from stdin: %w", err)
				}
				value = line
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return fmt.Errorf("api key is empty")
			}

			if err := app.secretStore.Put(cmd.Context(), apiKeySecret(provider), value); err != nil {
				return fmt.Errorf("store %s api key: %w", provider, err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "stored %s api key\n", provider)
			return err
		},
	}

	cmd.Flags().StringVar(&provider, "provider", config.ProviderOpenAI, "Provider (openai|anthropic)")
	cmd.Flags().StringVar(&value, "value", "", "API key value")

	return cmd
}

func newAuthRemoveKeyCmd(app *app) *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "remove-key",
		Short: "Remove a stored API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateProvider(provider); err != nil {
				return err
			}
			if err := app.secretStore.Delete(cmd.Context(), apiKeySecret(provider)); err != nil {
				return fmt.Errorf("remove %s api key: %w", provider, err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "removed %s api key\n", provider)
			return err
		},
	}

	cmd.Flags().StringVar(&provider, "provider", config.ProviderOpenAI, "Provider (openai|anthropic)")

	return cmd
}

func newAuthStatusCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which providers have an API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, provider := range []string{config.ProviderOpenAI, config.ProviderAnthropic} {
				state := "configured"
				if _, err := app.secretStore.Get(cmd.Context(), apiKeySecret(provider)); err != nil {
					if !errors.Is(err, domain.ErrSecretNotFound) {
						return fmt.Errorf("check %s api key: %w", provider, err)
					}
					state = "missing"
				}
				marker := " "
				if provider == app.cfg.LLM.Provider {
					marker = "*"
				}
				if _, err := fmt.Fprintf(out, "%s %-10s %s\n", marker, provider, state); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func validateProvider(provider string) error {
	switch provider {
	case config.ProviderOpenAI, config.ProviderAnthropic:
		return nil
	default:
		return fmt.Errorf("unsupported provider %q", provider)
	}
}
