package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/mika/artist-ledger/internal/engine"
	"github.com/mika/artist-ledger/internal/mapping"
	"github.com/mika/artist-ledger/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Roll the ledger up for the dashboard",
}

var reportTotalCmd = &cobra.Command{
	Use:   "total",
	Short: "Total revenue over a date range",
	RunE:  runReportTotal,
}

var reportCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Revenue grouped by import category",
	RunE:  runReportCategories,
}

var reportAssetsCmd = &cobra.Command{
	Use:   "assets [category]",
	Short: "Per-asset drill-down within one category",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReportAssets,
}

var reportRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Most recent ledger entries",
	RunE:  runReportRecent,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportTotalCmd, reportCategoriesCmd, reportAssetsCmd, reportRecentCmd)

	reportTotalCmd.Flags().String("artist", "", "scope to one artist by name")
	reportTotalCmd.Flags().String("from", "", "range start (default: beginning of time)")
	reportTotalCmd.Flags().String("to", "", "range end (default: today)")

	reportRecentCmd.Flags().IntP("limit", "n", 10, "number of entries")
}

func openReportStore() (*store.Store, error) {
	db, err := store.Open(viper.GetString("db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func runReportTotal(cmd *cobra.Command, args []string) error {
	artistName, _ := cmd.Flags().GetString("artist")
	fromText, _ := cmd.Flags().GetString("from")
	toText, _ := cmd.Flags().GetString("to")

	from := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Now().UTC()
	var err error
	if fromText != "" {
		if from, err = mapping.ParseDate(fromText, nil); err != nil {
			return err
		}
	}
	if toText != "" {
		if to, err = mapping.ParseDate(toText, nil); err != nil {
			return err
		}
	}

	db, err := openReportStore()
	if err != nil {
		return err
	}
	defer db.Close()

	var artistID int64
	scope := "all artists"
	if artistName != "" {
		artist, err := db.GetArtistByName(artistName)
		if err != nil {
			return err
		}
		if artist == nil {
			return fmt.Errorf("no artist named %q", artistName)
		}
		artistID = artist.ID
		scope = artist.Name
	}

	eng := engine.New(db, engine.Options{})
	total, err := eng.TotalRevenue(artistID, from, to)
	if err != nil {
		return err
	}

	fmt.Printf("Total revenue for %s, %s to %s: %s\n",
		scope, from.Format(store.DateLayout), to.Format(store.DateLayout),
		color.GreenString(total.String()))
	return nil
}

func runReportCategories(cmd *cobra.Command, args []string) error {
	db, err := openReportStore()
	if err != nil {
		return err
	}
	defer db.Close()

	totals, err := engine.New(db, engine.Options{}).RevenueByCategory()
	if err != nil {
		return err
	}
	if len(totals) == 0 {
		fmt.Println("The ledger is empty.")
		return nil
	}

	bold := color.New(color.Bold)
	bold.Printf("%-24s %14s %8s\n", "Category", "Total", "Entries")
	for _, ct := range totals {
		fmt.Printf("%-24s %14s %8d\n", ct.Category, engine.Money{Amount: ct.Total}, ct.Entries)
	}
	return nil
}

func runReportAssets(cmd *cobra.Command, args []string) error {
	category := ""
	if len(args) > 0 {
		category = args[0]
	}

	db, err := openReportStore()
	if err != nil {
		return err
	}
	defer db.Close()

	totals, err := engine.New(db, engine.Options{}).RevenueByAsset(category)
	if err != nil {
		return err
	}
	if len(totals) == 0 {
		fmt.Println("No entries in that category.")
		return nil
	}

	bold := color.New(color.Bold)
	bold.Printf("%-10s %-28s %14s\n", "Kind", "Asset", "Total")
	for _, at := range totals {
		fmt.Printf("%-10s %-28s %14s\n", at.Kind, at.Name, engine.Money{Amount: at.Total})
	}
	return nil
}

func runReportRecent(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	db, err := openReportStore()
	if err != nil {
		return err
	}
	defer db.Close()

	views, err := engine.New(db, engine.Options{}).RecentActivity(limit)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		fmt.Println("The ledger is empty.")
		return nil
	}

	for _, v := range views {
		amount := engine.Money{Amount: v.Amount}.String()
		if v.Amount.IsNegative() {
			amount = color.RedString(amount)
		} else {
			amount = color.GreenString(amount)
		}
		line := fmt.Sprintf("%s  %-20s %-8s %12s", v.RevenueDate.Format(store.DateLayout),
			v.ArtistName, v.SourceName, amount)
		if v.AssetName != "" {
			line += "  " + v.AssetName
		}
		if v.Description != "" {
			line += "  (" + v.Description + ")"
		}
		fmt.Println(line)
	}
	return nil
}
