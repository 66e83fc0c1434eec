package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/steipete/sheetrecords/internal/outfmt"
)

type worksheetInfo struct {
	Index    int    `json:"index"`
	Title    string `json:"title"`
	RowCount int    `json:"rowCount"`
}

func newWorksheetsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "worksheets <spreadsheetId>",
		Short: "List the worksheets of a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if id == "" {
				return newUsageError(errors.New("empty spreadsheet id"))
			}
			creds, err := resolveCredentials(flags, nil)
			if err != nil {
				return err
			}
			raw, err := creds.Resolve()
			if err != nil {
				return err
			}

			ss, err := newOpener(flags).Open(cmd.Context(), id, raw)
			if err != nil {
				return err
			}
			if c, ok := ss.(io.Closer); ok {
				defer func() { _ = c.Close() }()
			}
			if err := ss.LoadInfo(cmd.Context()); err != nil {
				return fmt.Errorf("load spreadsheet %s: %w", id, err)
			}

			sheets := ss.Worksheets()
			infos := make([]worksheetInfo, len(sheets))
			for i, ws := range sheets {
				infos[i] = worksheetInfo{Index: i, Title: ws.Title(), RowCount: ws.RowCount()}
			}
			return writeWorksheets(cmd, os.Stdout, ss.Title(), infos)
		},
	}
}

func writeWorksheets(cmd *cobra.Command, w io.Writer, title string, infos []worksheetInfo) error {
	if outfmt.IsJSON(cmd.Context()) {
		return outfmt.WriteJSON(w, map[string]any{
			"title":      title,
			"worksheets": infos,
		})
	}
	if outfmt.IsPlain(cmd.Context()) {
		for _, ws := range infos {
			if _, err := fmt.Fprintf(w, "%d\t%s\t%d\n", ws.Index, ws.Title, ws.RowCount); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tTITLE\tROWS")
	for _, ws := range infos {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", ws.Index, ws.Title, ws.RowCount)
	}
	return tw.Flush()
}
