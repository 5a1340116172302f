package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "breed-twin",
	Short: "Find the dog breed that looks like you",
	Long: `Breed Twin extracts facial features and colors from a photo and matches
them against a catalog of dog breeds built from dog.ceo, enriched with
TheDogAPI metadata and Wikipedia descriptions.

It can also calibrate the breed coat colors by analyzing breed photos,
storing the resulting profiles in PostgreSQL.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error), overrides LOG_LEVEL")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
