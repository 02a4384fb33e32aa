package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "dvfpipe",
	Short: "DVF transaction preprocessing and feature enrichment",
	Long: "dvfpipe cleans French DVF property transaction extracts, normalizes\n" +
		"sale prices to a reference quarter and enriches each row with\n" +
		"neighborhood price levels, school quality and IRIS socio-economic data.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(preprocessCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
