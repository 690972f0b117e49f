package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/garagon/presubmit"
)

var listChecksCmd = &cobra.Command{
	Use:   "list-checks [path]",
	Short: "List the checks in run order",
	Long:  `Lists every check with its description. Checks disabled by .presubmit.yml in path or by --disable-check are marked.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runListChecks,
}

func init() {
	rootCmd.AddCommand(listChecksCmd)
}

func runListChecks(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	var opts []presubmit.Option
	cfg, err := presubmit.LoadConfig(dir)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	} else {
		opts = append(opts, presubmit.WithConfig(cfg))
	}
	if len(flagDisableChecks) > 0 {
		opts = append(opts, presubmit.WithDisabledChecks(flagDisableChecks...))
	}
	infos := presubmit.ListChecks(opts...)

	w := cmd.OutOrStdout()

	if strings.ToLower(flagFormat) == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	enabled := 0
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "NAME\tENABLED\tDESCRIPTION\n")
	fmt.Fprintf(tw, "----\t-------\t-----------\n")
	for _, info := range infos {
		state := "yes"
		if info.Enabled {
			enabled++
		} else {
			state = "no"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, state, info.Description)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d of %d checks enabled\n", enabled, len(infos))

	return nil
}
