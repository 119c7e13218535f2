package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lichtenberg/internal/model"
)

var modelsCmd = &cobra.Command{
	Use:   "models [name [key]]",
	Short: "List growth models and their parameters",
	Long: "With no arguments every registered model is listed. A name lists that model only\n" +
		"and a key prints the default of a single parameter.",
	Args: cobra.MaximumNArgs(2),
	RunE: listModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func listModels(cmd *cobra.Command, args []string) error {
	names := model.Names()
	if len(args) > 0 {
		names = args[:1]
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, name := range names {
		defaults, ok := model.Defaults(name)
		if !ok {
			return fmt.Errorf("unknown model %q", name)
		}
		if len(args) == 2 {
			p, ok := defaults.Lookup(args[1])
			if !ok {
				return fmt.Errorf("model %s has no parameter %q", name, args[1])
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.Key, p.Type, p.Value)
			continue
		}
		fmt.Fprintf(w, "%s\n", name)
		for _, group := range defaults.Groups {
			for _, p := range group.Params {
				fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", p.Key, p.Type, p.Value, p.Label)
			}
		}
	}
	return w.Flush()
}
