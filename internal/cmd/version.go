package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = ""
)

func VersionString() string {
	if commit == "" {
		return fmt.Sprintf("sheetrecords %s (%s)", version, runtime.Version())
	}
	return fmt.Sprintf("sheetrecords %s (%s, %s)", version, commit, runtime.Version())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintln(os.Stdout, VersionString())
			return err
		},
	}
}
