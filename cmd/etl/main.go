package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	configFile string
	envName    string
	logLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "etl",
	Short: "Loads monthly federal expense archives into the warehouse",
	Long: `etl downloads the monthly expense archives published by the transparency
portal, normalizes them and appends what is new to the star schema warehouse.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("etl v" + version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "config.json", "configuration document")
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "environment block to use (default: the document's \"environment\")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default: from config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}
