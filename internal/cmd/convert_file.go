package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steipete/sheetrecords/internal/convert"
	"github.com/steipete/sheetrecords/internal/xlsxsheet"
)

func newConvertFileCmd(flags *rootFlags) *cobra.Command {
	var conv conversionFlags
	var sheetName string

	cmd := &cobra.Command{
		Use:   "convert-file <book.xlsx>",
		Short: "Convert worksheets of a local .xlsx workbook into JSON records",
		Long: strings.TrimSpace(`
Convert worksheets of a local .xlsx workbook into JSON records.

--sheet converts exactly one worksheet by name. Otherwise worksheets are
selected like in "convert" (--worksheet, --all-worksheets, --multi).`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(args[0])
			opts := convert.Options{SpreadsheetID: path, PropertyMode: flags.cfg.PropertyMode}
			conv.apply(cmd, &opts)

			if strings.TrimSpace(sheetName) != "" {
				if cmd.Flags().Changed("worksheet") || conv.allWorksheets {
					return newUsageError(errors.New("--sheet cannot be combined with --worksheet or --all-worksheets"))
				}
				records, err := convertWorkbookSheet(cmd, path, sheetName, opts)
				if err != nil {
					return err
				}
				return writeResult(cmd, os.Stdout, &convert.Result{
					Sheets: []convert.SheetRecords{{Title: sheetName, Records: records}},
				})
			}

			res, err := convert.SpreadsheetToJSON(cmd.Context(), xlsxsheet.Opener{}, opts)
			if err != nil {
				return err
			}
			return writeResult(cmd, os.Stdout, res)
		},
	}

	conv.register(cmd)
	cmd.Flags().StringVar(&sheetName, "sheet", "", "Convert only this worksheet")
	return cmd
}

func convertWorkbookSheet(cmd *cobra.Command, path, name string, opts convert.Options) ([]convert.Record, error) {
	wb, err := xlsxsheet.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = wb.Close() }()

	if err := wb.LoadInfo(cmd.Context()); err != nil {
		return nil, err
	}
	ws, ok := wb.Sheet(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", convert.ErrNoWorksheetFound, name, path)
	}
	if err := ws.LoadCells(cmd.Context()); err != nil {
		return nil, err
	}
	return convert.CellsToJSON(cmd.Context(), ws, opts)
}
