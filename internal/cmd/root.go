package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/steipete/sheetrecords/internal/config"
	"github.com/steipete/sheetrecords/internal/errfmt"
	"github.com/steipete/sheetrecords/internal/outfmt"
	"github.com/steipete/sheetrecords/internal/ui"
)

type rootFlags struct {
	Color       string
	Account     string
	Credentials string
	APIKey      string
	JSON        bool
	Plain       bool
	Verbose     bool

	// cfg is the config file, read before any command runs.
	cfg config.File
}

func Execute(args []string) error {
	flags := rootFlags{
		Color:       envOr("SHEETRECORDS_COLOR", "auto"),
		Account:     os.Getenv("SHEETRECORDS_ACCOUNT"),
		Credentials: os.Getenv("SHEETRECORDS_CREDENTIALS"),
		APIKey:      os.Getenv("SHEETRECORDS_API_KEY"),
	}
	envMode := outfmt.FromEnv()
	flags.JSON = envMode.JSON
	flags.Plain = envMode.Plain

	cobra.EnablePrefixMatching = false

	if hasExactArg(args, "--version") {
		fmt.Fprintln(os.Stdout, VersionString())
		return nil
	}

	root := &cobra.Command{
		Use:           "sheetrecords",
		Short:         "Convert Google Sheets worksheets into JSON records",
		Long:          rootLong(),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Example: strings.TrimSpace(`
  # Public spreadsheet, first worksheet
  sheetrecords convert 1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms --api-key $KEY

  # Service account credentials (JSON or path)
  sheetrecords convert <spreadsheetId> --credentials ~/sa.json --worksheet Orders

  # Store credentials once in the keyring
  sheetrecords auth set work ~/sa.json --default
  sheetrecords convert <spreadsheetId> --all-worksheets --property-mode camel

  # Local workbook
  sheetrecords convert-file ./book.xlsx --sheet Sheet1

  # Column letters <-> numbers
  sheetrecords column AB 28 C7
`),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logLevel := slog.LevelWarn
			if flags.Verbose {
				logLevel = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})))

			cfg, err := config.ReadConfig()
			if err != nil {
				return err
			}
			flags.cfg = cfg
			if flags.APIKey == "" {
				flags.APIKey = cfg.APIKey
			}

			mode, err := outfmt.FromFlags(flags.JSON, flags.Plain)
			if err != nil {
				return err
			}
			cmd.SetContext(outfmt.WithMode(cmd.Context(), mode))

			u, err := ui.New(ui.Options{
				Stdout: os.Stdout,
				Stderr: os.Stderr,
				Color: func() string {
					if outfmt.IsJSON(cmd.Context()) || outfmt.IsPlain(cmd.Context()) {
						return "never"
					}
					return flags.Color
				}(),
			})
			if err != nil {
				return err
			}
			cmd.SetContext(ui.WithUI(cmd.Context(), u))
			return nil
		},
	}

	root.SetArgs(args)
	root.PersistentFlags().StringVar(&flags.Color, "color", flags.Color, "Color output: auto|always|never")
	root.PersistentFlags().StringVar(&flags.Account, "account", flags.Account, "Keyring account holding service account credentials (see: sheetrecords auth)")
	root.PersistentFlags().StringVar(&flags.Credentials, "credentials", flags.Credentials, "Service account credentials: JSON document or path to a JSON file")
	root.PersistentFlags().StringVar(&flags.APIKey, "api-key", flags.APIKey, "Google API key for public spreadsheets")
	root.PersistentFlags().BoolVar(&flags.JSON, "json", flags.JSON, "Output JSON to stdout (best for scripting)")
	root.PersistentFlags().BoolVar(&flags.Plain, "plain", flags.Plain, "Output stable, parseable text to stdout (TSV; no colors)")
	root.PersistentFlags().BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")

	root.AddCommand(newConvertCmd(&flags))
	root.AddCommand(newConvertFileCmd(&flags))
	root.AddCommand(newWorksheetsCmd(&flags))
	root.AddCommand(newColumnCmd())
	root.AddCommand(newAuthCmd())
	root.AddCommand(newVersionCmd())

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		// pflag already includes helpful context ("unknown flag", "invalid argument", ...).
		return newUsageError(err)
	})
	root.AddCommand(newCompletionCmd())

	err := root.Execute()
	if err == nil {
		return nil
	}
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}

	if ExitCode(err) == 1 && isUsageError(err) {
		err = &ExitError{Code: 2, Err: err}
	}

	if u := ui.FromContext(root.Context()); u != nil {
		u.Err().Error(errfmt.Format(err))
		return err
	}
	_, _ = fmt.Fprintln(os.Stderr, errfmt.Format(err))
	return err
}

func rootLong() string {
	path, err := config.ConfigPath()
	if err != nil {
		path = "(unavailable)"
	}
	return fmt.Sprintf(`Convert Google Sheets worksheets into JSON records.

Config: %s
  default_account   keyring account used when --account is not set
  property_mode     default --property-mode
  api_key           default --api-key
  keyring_backend   keyring backend: auto|keychain|secret-service|file
                    (env SHEETRECORDS_KEYRING_BACKEND wins)`, path)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func hasExactArg(args []string, target string) bool {
	for _, a := range args {
		if a == target {
			return true
		}
	}
	return false
}

// newUsageError wraps errors in a way main() can map to exit code 2.
func newUsageError(err error) error {
	if err == nil {
		return nil
	}
	// Preserve pflag.ErrHelp (should not be treated as failure).
	if errors.Is(err, pflag.ErrHelp) {
		return err
	}
	return &ExitError{Code: 2, Err: err}
}

func isUsageError(err error) bool {
	var outErr *outfmt.ParseError
	if errors.As(err, &outErr) {
		return true
	}
	var uiErr *ui.ParseError
	if errors.As(err, &uiErr) {
		return true
	}
	msg := strings.TrimSpace(err.Error())
	switch {
	case strings.HasPrefix(msg, "accepts "),
		strings.HasPrefix(msg, "requires "),
		strings.HasPrefix(msg, "unknown command"),
		strings.HasPrefix(msg, "invalid argument"),
		strings.HasPrefix(msg, "unknown flag"),
		strings.HasPrefix(msg, "unknown shorthand flag"):
		return true
	default:
		return false
	}
}
