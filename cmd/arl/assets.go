package main

import (
	"fmt"
	"strconv"

	"github.com/mika/artist-ledger/internal/engine"
	"github.com/mika/artist-ledger/internal/store"
	"github.com/mika/artist-ledger/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "List, create, and delete albums, tracks, and campaigns",
}

var assetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every asset with its owner",
	RunE:  runAssetsList,
}

var assetsAddCmd = &cobra.Command{
	Use:   "add <album|track|campaign> <title>",
	Short: "Create an asset for an artist",
	Args:  cobra.ExactArgs(2),
	RunE:  runAssetsAdd,
}

var assetsDeleteCmd = &cobra.Command{
	Use:   "delete <album|track|campaign> <id>",
	Short: "Delete an asset (restricted while entries reference it)",
	Args:  cobra.ExactArgs(2),
	RunE:  runAssetsDelete,
}

func init() {
	rootCmd.AddCommand(assetsCmd)
	assetsCmd.AddCommand(assetsListCmd, assetsAddCmd, assetsDeleteCmd)

	assetsAddCmd.Flags().String("artist", "", "owning artist name (required)")
	assetsAddCmd.Flags().String("album", "", "album title a new track belongs to")
	assetsAddCmd.Flags().String("release-date", "", "album release date")
	assetsAddCmd.Flags().String("release-type", "", "album release type (default Album)")
	assetsAddCmd.Flags().String("start", "", "campaign start date")
	assetsAddCmd.Flags().String("end", "", "campaign end date")
	assetsAddCmd.MarkFlagRequired("artist")
}

func runAssetsList(cmd *cobra.Command, args []string) error {
	db, err := store.Open(viper.GetString("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	assets, err := engine.New(db, engine.Options{}).ListAssets()
	if err != nil {
		return err
	}
	if len(assets) == 0 {
		fmt.Println("No assets yet.")
		return nil
	}

	for _, a := range assets {
		fmt.Printf("%-9s %-4d %-20s %s\n", a.Kind, a.ID, a.ArtistName, a.Title)
	}
	return nil
}

func runAssetsAdd(cmd *cobra.Command, args []string) error {
	util.SetQuiet(viper.GetBool("quiet"))

	kind, title := args[0], args[1]
	artistName, _ := cmd.Flags().GetString("artist")

	db, err := store.Open(viper.GetString("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	artist, err := db.GetArtistByName(artistName)
	if err != nil {
		return err
	}
	if artist == nil {
		return fmt.Errorf("no artist named %q (see 'arl artist add')", artistName)
	}

	switch kind {
	case "album":
		releaseDate, _ := cmd.Flags().GetString("release-date")
		releaseType, _ := cmd.Flags().GetString("release-type")
		album := &store.Album{ArtistID: artist.ID, Title: title, ReleaseDate: releaseDate, ReleaseType: releaseType}
		if err := db.InsertAlbum(album); err != nil {
			return err
		}
		util.SuccessLog("Created album %q (%d) for %s", album.Title, album.ID, artist.Name)
	case "track":
		track := &store.Track{ArtistID: artist.ID, Title: title}
		if albumTitle, _ := cmd.Flags().GetString("album"); albumTitle != "" {
			album, err := db.GetAlbumByTitle(artist.ID, albumTitle)
			if err != nil {
				return err
			}
			if album == nil {
				return fmt.Errorf("artist %q has no album %q", artist.Name, albumTitle)
			}
			track.AlbumID = album.ID
		}
		if err := db.InsertTrack(track); err != nil {
			return err
		}
		util.SuccessLog("Created track %q (%d) for %s", track.Title, track.ID, artist.Name)
	case "campaign":
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		campaign := &store.Campaign{ArtistID: artist.ID, Name: title, StartDate: start, EndDate: end}
		if err := db.InsertCampaign(campaign); err != nil {
			return err
		}
		util.SuccessLog("Created campaign %q (%d) for %s", campaign.Name, campaign.ID, artist.Name)
	default:
		return fmt.Errorf("unknown asset kind %q (want album, track, or campaign)", kind)
	}
	return nil
}

func runAssetsDelete(cmd *cobra.Command, args []string) error {
	util.SetQuiet(viper.GetBool("quiet"))

	kind := args[0]
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("bad asset id %q", args[1])
	}

	db, err := store.Open(viper.GetString("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := engine.New(db, engine.Options{}).DeleteAsset(kind, id); err != nil {
		return err
	}
	util.SuccessLog("Deleted %s %d", kind, id)
	return nil
}
