// Command lichtenberg grows dielectric-breakdown figures on a grid and
// inspects the results.
package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lichtenberg",
	Short: "Simulate Lichtenberg figures on a cell grid",
	Long: `lichtenberg grows branching discharge patterns from seed cells using
pluggable breakdown models, then renders, traces and summarises them.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("lichtenberg: %v", err)
	}
}

// parseSets turns repeated key=value flags into a map.
func parseSets(sets []string) (map[string]string, error) {
	out := make(map[string]string, len(sets))
	for _, kv := range sets {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q, want key=value", kv)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}
