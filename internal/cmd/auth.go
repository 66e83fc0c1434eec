package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/steipete/sheetrecords/internal/convert"
	"github.com/steipete/sheetrecords/internal/outfmt"
	"github.com/steipete/sheetrecords/internal/secrets"
	"github.com/steipete/sheetrecords/internal/ui"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage service account credentials in the keyring",
	}
	cmd.AddCommand(newAuthSetCmd())
	cmd.AddCommand(newAuthListCmd())
	cmd.AddCommand(newAuthRemoveCmd())
	cmd.AddCommand(newAuthDefaultCmd())
	return cmd
}

func newAuthSetCmd() *cobra.Command {
	var makeDefault bool

	cmd := &cobra.Command{
		Use:   "set <account> <credentials>",
		Short: "Store service account credentials (JSON document, path, or - for stdin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := ui.FromContext(cmd.Context())
			name := strings.TrimSpace(args[0])
			if name == "" {
				return newUsageError(errors.New("empty account name"))
			}

			src := args[1]
			if src == "-" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read credentials: %w", err)
				}
				src = string(data)
			}
			raw, err := convert.CredentialsString(src).Resolve()
			if err != nil {
				return err
			}

			store, err := openSecretsStore()
			if err != nil {
				return err
			}
			if err := store.SetCredentials(name, secrets.Credentials{JSON: raw}); err != nil {
				return err
			}
			if makeDefault {
				if err := store.SetDefaultAccount(name); err != nil {
					return err
				}
			}

			stored, err := store.GetCredentials(name)
			if err != nil {
				return err
			}
			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{
					"stored":  true,
					"account": stored.Name,
					"email":   stored.ClientEmail,
					"default": makeDefault,
				})
			}
			u.Err().Successf("Stored credentials for %s (%s)", stored.Name, stored.ClientEmail)
			return nil
		},
	}
	cmd.Flags().BoolVar(&makeDefault, "default", false, "Make this the default account")
	return cmd
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u := ui.FromContext(cmd.Context())
			store, err := openSecretsStore()
			if err != nil {
				return err
			}
			creds, err := store.ListCredentials()
			if err != nil {
				return err
			}
			def, err := store.GetDefaultAccount()
			if err != nil {
				return err
			}

			if outfmt.IsJSON(cmd.Context()) {
				type item struct {
					Account   string `json:"account"`
					Email     string `json:"email,omitempty"`
					ProjectID string `json:"project_id,omitempty"`
					CreatedAt string `json:"created_at,omitempty"`
					Default   bool   `json:"default"`
				}
				out := make([]item, 0, len(creds))
				for _, c := range creds {
					created := ""
					if !c.CreatedAt.IsZero() {
						created = c.CreatedAt.UTC().Format(time.RFC3339)
					}
					out = append(out, item{
						Account:   c.Name,
						Email:     c.ClientEmail,
						ProjectID: c.ProjectID,
						CreatedAt: created,
						Default:   c.Name == def,
					})
				}
				return outfmt.WriteJSON(os.Stdout, map[string]any{"accounts": out})
			}
			if len(creds) == 0 {
				u.Err().Println("No accounts stored")
				return nil
			}

			if outfmt.IsPlain(cmd.Context()) {
				for _, c := range creds {
					fmt.Fprintf(os.Stdout, "%s\t%s\t%s\t%t\n", c.Name, c.ClientEmail, c.ProjectID, c.Name == def)
				}
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ACCOUNT\tEMAIL\tPROJECT\tDEFAULT")
			for _, c := range creds {
				mark := ""
				if c.Name == def {
					mark = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, c.ClientEmail, c.ProjectID, mark)
			}
			return tw.Flush()
		},
	}
}

func newAuthRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <account>",
		Aliases: []string{"rm"},
		Short:   "Remove stored credentials",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := ui.FromContext(cmd.Context())
			store, err := openSecretsStore()
			if err != nil {
				return err
			}
			if err := store.DeleteCredentials(args[0]); err != nil {
				return err
			}
			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{"removed": true, "account": strings.ToLower(strings.TrimSpace(args[0]))})
			}
			u.Err().Successf("Removed %s", args[0])
			return nil
		},
	}
}

func newAuthDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default [account]",
		Short: "Show or set the default account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSecretsStore()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if _, err := store.GetCredentials(args[0]); err != nil {
					return err
				}
				if err := store.SetDefaultAccount(args[0]); err != nil {
					return err
				}
			}
			def, err := store.GetDefaultAccount()
			if err != nil {
				return err
			}
			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{"default": def})
			}
			_, err = fmt.Fprintln(os.Stdout, def)
			return err
		},
	}
}
