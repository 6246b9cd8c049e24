package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mika/artist-ledger/internal/engine"
	"github.com/mika/artist-ledger/internal/store"
	"github.com/mika/artist-ledger/internal/util"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a tabular revenue export through a saved template",
	Long: `Import a CSV or XLSX revenue export using a saved import template.

Each row is mapped to a ledger entry; rows that fail coercion and rows
that duplicate existing entries are reported but never block the rest
of the batch. Accepted rows are written in a single transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("template", "t", "", "import template name (required)")
	importCmd.Flags().Bool("no-create", false, "do not create unknown artists/albums/tracks")
	importCmd.Flags().Bool("keep-duplicates", false, "import rows even when they match existing entries")
	importCmd.Flags().Bool("no-header", false, "input has no header row")
	importCmd.Flags().StringSlice("date-format", nil, "date layouts to try, in Go reference-time form")
	importCmd.MarkFlagRequired("template")
}

func runImport(cmd *cobra.Command, args []string) error {
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))

	templateName, _ := cmd.Flags().GetString("template")
	noCreate, _ := cmd.Flags().GetBool("no-create")
	keepDuplicates, _ := cmd.Flags().GetBool("keep-duplicates")
	noHeader, _ := cmd.Flags().GetBool("no-header")
	dateFormats, _ := cmd.Flags().GetStringSlice("date-format")

	db, err := store.Open(viper.GetString("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	tpl, err := db.GetTemplateByName(templateName)
	if err != nil {
		return err
	}
	if tpl == nil {
		return fmt.Errorf("no template named %q (see 'arl template list')", templateName)
	}

	rows, err := readRows(args[0], !noHeader)
	if err != nil {
		return err
	}
	util.InfoLog("Read %d rows from %s", len(rows), args[0])

	var bar *progressbar.ProgressBar
	if util.IsTerminal(os.Stdout.Fd()) && !util.IsQuiet() {
		bar = progressbar.NewOptions(len(rows),
			progressbar.OptionSetDescription("Importing"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		bar.Set(0)
	}

	eng := engine.New(db, engine.Options{
		CreateMissing:      !noCreate,
		SuppressDuplicates: !keepDuplicates,
		DateFormats:        dateFormats,
	})

	result, err := eng.ImportBatch(context.Background(), tpl.ID, rows)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	for _, rowErr := range result.RowErrors {
		util.WarnLog("row %d rejected (%s): %s", rowErr.RowIndex, rowErr.Reason, rowErr.Detail)
	}
	for _, dup := range result.Duplicates {
		util.DebugLog("row %d skipped: %s", dup.RowIndex, dup.Detail)
	}

	util.SuccessLog("Run %s: %d accepted, %d errors, %d duplicates",
		result.RunKey, len(result.Accepted), len(result.RowErrors), len(result.Duplicates))
	return nil
}
