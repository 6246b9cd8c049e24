package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/mika/artist-ledger/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the ledger database",
	Long: `Run diagnostic checks to ensure arl can operate correctly.

This command checks:
- Database accessibility and integrity
- SQLite version
- The fixed revenue source seed (ids 1-5)
- That every saved template's headers and mappings still parse

Use this command to troubleshoot issues before importing.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	pass := color.GreenString("ok")
	fail := color.RedString("FAIL")
	failures := 0

	check := func(name string, err error) {
		if err != nil {
			fmt.Printf("  %-28s %s  %v\n", name, fail, err)
			failures++
			return
		}
		fmt.Printf("  %-28s %s\n", name, pass)
	}

	dbPath := viper.GetString("db")
	fmt.Printf("Checking %s\n", dbPath)

	db, err := store.Open(dbPath)
	check("open and migrate", err)
	if err != nil {
		return fmt.Errorf("%d check(s) failed", failures)
	}
	defer db.Close()

	fmt.Printf("  %-28s %s\n", "sqlite version", store.SQLiteVersion())

	check("integrity", db.CheckIntegrity())
	check("revenue source seed", db.VerifySourceSeed())

	templates, err := db.ListTemplates()
	check("load templates", err)
	for _, tpl := range templates {
		check(fmt.Sprintf("template %q", tpl.Name), tpl.Validate())
	}

	if failures > 0 {
		return fmt.Errorf("%d check(s) failed", failures)
	}
	fmt.Println("All checks passed.")
	return nil
}
