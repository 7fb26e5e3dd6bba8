package commands

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/pkg/types"
)

func (c *cli) newKeysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keys",
		Aliases: []string{"key"},
		Short:   "Manage third-party API keys",
		Long: `Third-party API keys let the backend list collections from your API
platform account so they can be imported with 'apidrift collections import'.`,
	}

	cmd.AddCommand(c.newKeysCreateCommand())
	cmd.AddCommand(c.newKeysListCommand())
	cmd.AddCommand(c.newKeysDeleteCommand())

	return cmd
}

func (c *cli) newKeysCreateCommand() *cobra.Command {
	var (
		name       string
		value      string
		setDefault bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register an API key",
		Long: `Register an API key. The key is prompted for when --key is omitted so
it does not end up in shell history. Only a masked prefix is shown afterwards.`,
		Example: `  apidrift keys create --name work --default`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.authenticated()
			if err != nil {
				return err
			}

			if value == "" {
				if value, err = c.readSecret(bufio.NewReader(c.in), "API key: "); err != nil {
					return err
				}
			}
			if value == "" {
				return errors.ValidationError("API key value is required")
			}

			created, err := a.Client().CreateAPIKey(cmd.Context(), types.APIKey{
				Name:    name,
				Key:     value,
				Default: setDefault,
			})
			if err != nil {
				return err
			}

			p, err := c.printer()
			if err != nil {
				return err
			}
			if p.Structured() {
				masked := *created
				masked.Key = created.Masked()
				return p.Encode(masked)
			}
			errors.DisplaySuccess(fmt.Sprintf("API key %s registered (%s)", created.Name, created.Masked()))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name for the key")
	cmd.Flags().StringVar(&value, "key", "", "key value (prompted when omitted)")
	cmd.Flags().BoolVar(&setDefault, "default", false, "use this key for remote collection listing")

	return cmd
}

func (c *cli) newKeysListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.authenticated()
			if err != nil {
				return err
			}
			keys, err := a.Client().ListAPIKeys(cmd.Context())
			if err != nil {
				return err
			}
			p, err := c.printer()
			if err != nil {
				return err
			}
			return p.APIKeys(keys)
		},
	}
}

func (c *cli) newKeysDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <key-id>",
		Aliases: []string{"rm"},
		Short:   "Delete an API key",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.authenticated()
			if err != nil {
				return err
			}
			if err := a.Client().DeleteAPIKey(cmd.Context(), args[0]); err != nil {
				return err
			}
			errors.DisplaySuccess(fmt.Sprintf("API key %s deleted", args[0]))
			return nil
		},
	}
}
