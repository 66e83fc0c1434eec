package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steipete/sheetrecords/internal/convert"
	"github.com/steipete/sheetrecords/internal/googleapi"
	"github.com/steipete/sheetrecords/internal/normalize"
	"github.com/steipete/sheetrecords/internal/outfmt"
	"github.com/steipete/sheetrecords/internal/secrets"
)

var (
	newOpener = func(flags *rootFlags) convert.Opener {
		return &googleapi.Opener{APIKey: flags.APIKey}
	}
	openSecretsStore = secrets.OpenDefault
)

// conversionFlags are the option flags shared by convert and convert-file.
type conversionFlags struct {
	worksheets    []string
	multi         bool
	allWorksheets bool
	ignoreRows    []string
	ignoreCols    []string
	vertical      bool
	propertyMode  string
	nested        bool
}

func (f *conversionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.worksheets, "worksheet", nil, "Worksheet index (0-based) or title; repeat for several")
	cmd.Flags().BoolVar(&f.multi, "multi", false, "Output one record list per worksheet even for a single --worksheet")
	cmd.Flags().BoolVar(&f.allWorksheets, "all-worksheets", false, "Convert every worksheet")
	cmd.Flags().StringArrayVar(&f.ignoreRows, "ignore-row", nil, "Row number to ignore (vertical sheets)")
	cmd.Flags().StringArrayVar(&f.ignoreCols, "ignore-col", nil, "Column letter or number to ignore")
	cmd.Flags().BoolVar(&f.vertical, "vertical", false, "Sheet is laid out vertically")
	cmd.Flags().StringVar(&f.propertyMode, "property-mode", "", "Rename header keys: camel|pascal|nospace|verbatim")
	cmd.Flags().BoolVar(&f.nested, "nested", false, "Build nested objects from dotted headers (address.city)")
}

// apply copies the flags the user set onto opts, leaving option file values
// for the rest.
func (f *conversionFlags) apply(cmd *cobra.Command, opts *convert.Options) {
	changed := cmd.Flags().Changed
	if changed("worksheet") || changed("multi") {
		ws := opts.Worksheet
		if changed("worksheet") {
			ws = identifierList(f.worksheets, f.multi)
		} else if f.multi {
			ws = normalize.Many(normalize.NormalizeToList(opts.Worksheet, []normalize.Identifier{normalize.IndexID(0)})...)
		}
		opts.Worksheet = ws
	}
	if changed("all-worksheets") {
		opts.AllWorksheets = f.allWorksheets
	}
	if changed("ignore-row") {
		opts.IgnoreRow = identifierList(f.ignoreRows, true)
	}
	if changed("ignore-col") {
		opts.IgnoreCol = identifierList(f.ignoreCols, true)
	}
	if changed("vertical") {
		opts.Vertical = f.vertical
	}
	if changed("property-mode") {
		opts.PropertyMode = f.propertyMode
	}
	if changed("nested") {
		opts.Nested = f.nested
	}
}

func identifierList(values []string, multi bool) normalize.List[normalize.Identifier] {
	ids := make([]normalize.Identifier, 0, len(values))
	for _, v := range values {
		ids = append(ids, normalize.LabelID(strings.TrimSpace(v)))
	}
	if len(ids) == 1 && !multi {
		return normalize.Single(ids[0])
	}
	return normalize.Many(ids...)
}

func newConvertCmd(flags *rootFlags) *cobra.Command {
	var conv conversionFlags
	var optionsPath string

	cmd := &cobra.Command{
		Use:   "convert [spreadsheetId]",
		Short: "Convert worksheets of a Google spreadsheet into JSON records",
		Long: strings.TrimSpace(`
Convert worksheets of a Google spreadsheet into JSON records.

The first row of each worksheet holds the property names. Rows with an
empty first column are skipped, as are empty cells.

Credentials are taken from --credentials (a JSON document or a path), the
options file, or the keyring account (--account or the default account).
Without credentials the API key (--api-key) is used, else the request is
unauthenticated and only public spreadsheets can be read.`),
		Example: "  sheetrecords convert 1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms --worksheet 0 --worksheet Orders",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readOptionsFile(optionsPath)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				opts.SpreadsheetID = strings.TrimSpace(args[0])
			}
			conv.apply(cmd, &opts)
			if !cmd.Flags().Changed("property-mode") && opts.PropertyMode == "" {
				opts.PropertyMode = flags.cfg.PropertyMode
			}
			if opts.SpreadsheetID == "" {
				return newUsageError(errors.New("requires a spreadsheet id (argument or spreadsheetId in --options)"))
			}

			creds, err := resolveCredentials(flags, opts.Credentials)
			if err != nil {
				return err
			}
			opts.Credentials = creds

			res, err := convert.SpreadsheetToJSON(cmd.Context(), newOpener(flags), opts)
			if err != nil {
				return err
			}
			return writeResult(cmd, os.Stdout, res)
		},
	}

	conv.register(cmd)
	cmd.Flags().StringVar(&optionsPath, "options", "", "JSON options file (- for stdin); flags override its values")
	return cmd
}

func readOptionsFile(path string) (convert.Options, error) {
	var opts convert.Options
	path = strings.TrimSpace(path)
	if path == "" {
		return opts, nil
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return opts, fmt.Errorf("read options: %w", err)
	}
	if err := json.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("decode options %s: %w", path, err)
	}
	return opts, nil
}

// resolveCredentials picks credentials in order: --credentials (or
// SHEETRECORDS_CREDENTIALS), the options file, then a keyring account. The
// keyring is only required when an account was asked for explicitly.
func resolveCredentials(flags *rootFlags, fromFile *convert.Credentials) (*convert.Credentials, error) {
	if strings.TrimSpace(flags.Credentials) != "" {
		return convert.CredentialsString(flags.Credentials), nil
	}
	if !fromFile.IsZero() {
		return fromFile, nil
	}

	account := strings.TrimSpace(flags.Account)
	if account == "" {
		account = strings.TrimSpace(flags.cfg.DefaultAccount)
	}
	explicit := account != ""

	store, err := openSecretsStore()
	if err != nil {
		if explicit {
			return nil, err
		}
		slog.Debug("keyring unavailable", "err", err)
		return nil, nil
	}
	if account == "" {
		account, err = store.GetDefaultAccount()
		if err != nil {
			slog.Debug("no default account", "err", err)
			return nil, nil
		}
		if account == "" {
			return nil, nil
		}
	}

	c, err := store.GetCredentials(account)
	if err != nil {
		return nil, fmt.Errorf("credentials for account %q: %w", account, err)
	}
	slog.Debug("using keyring credentials", "account", c.Name, "client_email", c.ClientEmail)
	return convert.CredentialsJSON(c.JSON), nil
}

func writeResult(cmd *cobra.Command, w io.Writer, res *convert.Result) error {
	if outfmt.IsPlain(cmd.Context()) {
		return writeRecordsTSV(w, res)
	}
	return outfmt.WriteJSON(w, res)
}
