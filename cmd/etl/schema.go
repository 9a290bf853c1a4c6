package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create the warehouse namespace and tables if they do not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.storage.Schema.EnsureSchema(cmd.Context()); err != nil {
			return err
		}
		a.appLogger.Info("Main", "Warehouse schema ready: schema=%s", a.cfg.Schema)
		fmt.Println("warehouse schema ready")
		return nil
	},
}
