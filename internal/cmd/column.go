package cmd

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/steipete/sheetrecords/internal/normalize"
	"github.com/steipete/sheetrecords/internal/outfmt"
)

var a1CellRe = regexp.MustCompile(`^\$?([A-Za-z]+)\$?([0-9]+)$`)

type columnInfo struct {
	Input   string `json:"input"`
	Column  int    `json:"column"`
	Letters string `json:"letters"`
	Row     int    `json:"row,omitempty"`
}

func newColumnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "column <identifier>...",
		Short: "Convert between column letters and column numbers",
		Long: strings.TrimSpace(`
Convert between column letters and 1-based column numbers.

Numbers print their letters (28 -> AB), letters print their number
(ab -> 28) and A1 cells print column and row (C7 -> 3, 7).`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := make([]columnInfo, 0, len(args))
			for _, arg := range args {
				info, err := parseColumnArg(arg)
				if err != nil {
					return err
				}
				infos = append(infos, info)
			}
			return writeColumns(cmd, os.Stdout, infos)
		},
	}
}

func parseColumnArg(arg string) (columnInfo, error) {
	raw := strings.TrimSpace(arg)
	info := columnInfo{Input: arg}

	if m := a1CellRe.FindStringSubmatch(raw); m != nil {
		col, row, err := parseA1Cell(m[1], m[2])
		if err != nil {
			return info, err
		}
		info.Column, info.Row = col, row
	} else {
		col, err := normalize.ParseColumnIdentifier(normalize.PossibleInteger(normalize.LabelID(raw)))
		if err != nil {
			return info, err
		}
		info.Column = col
	}

	letters, err := normalize.ColumnLetters(info.Column)
	if err != nil {
		return info, err
	}
	info.Letters = letters
	return info, nil
}

func parseA1Cell(letters, digits string) (int, int, error) {
	col, err := normalize.ParseColumnIdentifier(normalize.LabelID(letters))
	if err != nil {
		return 0, 0, err
	}
	row, err := strconv.Atoi(digits)
	if err != nil || row <= 0 {
		return 0, 0, fmt.Errorf("%w: row in %s%s", normalize.ErrInvalidIdentifier, letters, digits)
	}
	return col, row, nil
}

func writeColumns(cmd *cobra.Command, w io.Writer, infos []columnInfo) error {
	if outfmt.IsJSON(cmd.Context()) {
		return outfmt.WriteJSON(w, infos)
	}
	if outfmt.IsPlain(cmd.Context()) {
		for _, c := range infos {
			if _, err := fmt.Fprintf(w, "%s\t%d\t%s\t%d\n", c.Input, c.Column, c.Letters, c.Row); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INPUT\tCOLUMN\tLETTERS\tROW")
	for _, c := range infos {
		row := ""
		if c.Row > 0 {
			row = strconv.Itoa(c.Row)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", c.Input, c.Column, c.Letters, row)
	}
	return tw.Flush()
}
