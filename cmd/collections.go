package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // cobra requires package-level command variable
var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List configured alternative collections",
	Args:  cobra.NoArgs,
	RunE:  runCollections,
}

//nolint:gochecknoinits // cobra requires init for command registration
func init() {
	rootCmd.AddCommand(collectionsCmd)
}

func runCollections(cmd *cobra.Command, _ []string) error {
	names := make([]string, 0, len(appConfig.Collections))
	for name := range appConfig.Collections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		coll := appConfig.Collections[name]
		mode := "copy"
		switch {
		case coll.IsLink():
			mode = "link"
		case len(coll.FormatList()) > 0:
			mode = "transcode to " + coll.Formats
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", name, mode, coll.Directory)
	}
	return nil
}
