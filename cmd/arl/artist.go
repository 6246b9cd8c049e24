package main

import (
	"fmt"
	"strconv"

	"github.com/mika/artist-ledger/internal/store"
	"github.com/mika/artist-ledger/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var artistCmd = &cobra.Command{
	Use:   "artist",
	Short: "Manage artists",
}

var artistAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create an artist",
	Args:  cobra.ExactArgs(1),
	RunE:  runArtistAdd,
}

var artistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List artists",
	RunE:  runArtistList,
}

var artistDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an artist (restricted while anything references it)",
	Args:  cobra.ExactArgs(1),
	RunE:  runArtistDelete,
}

func init() {
	rootCmd.AddCommand(artistCmd)
	artistCmd.AddCommand(artistAddCmd, artistListCmd, artistDeleteCmd)
}

func runArtistAdd(cmd *cobra.Command, args []string) error {
	util.SetQuiet(viper.GetBool("quiet"))

	db, err := store.Open(viper.GetString("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	artist := &store.Artist{Name: args[0]}
	if err := db.InsertArtist(artist); err != nil {
		return err
	}
	util.SuccessLog("Created artist %q (%d)", artist.Name, artist.ID)
	return nil
}

func runArtistList(cmd *cobra.Command, args []string) error {
	db, err := store.Open(viper.GetString("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	artists, err := db.ListArtists()
	if err != nil {
		return err
	}
	if len(artists) == 0 {
		fmt.Println("No artists yet.")
		return nil
	}

	for _, a := range artists {
		fmt.Printf("%-4d %s\n", a.ID, a.Name)
	}
	return nil
}

func runArtistDelete(cmd *cobra.Command, args []string) error {
	util.SetQuiet(viper.GetBool("quiet"))

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad artist id %q", args[0])
	}

	db, err := store.Open(viper.GetString("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.DeleteArtist(id); err != nil {
		return err
	}
	util.SuccessLog("Deleted artist %d", id)
	return nil
}
