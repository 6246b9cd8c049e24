package main

import (
	"fmt"
	"time"

	"github.com/mika/artist-ledger/internal/engine"
	"github.com/mika/artist-ledger/internal/mapping"
	"github.com/mika/artist-ledger/internal/store"
	"github.com/mika/artist-ledger/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage individual ledger entries",
}

var entryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a single revenue entry by hand",
	Long: `Record one revenue entry without a template. The same validation
rules apply as during imports: the artist and source must exist, and
any attributed track, album, or campaign must belong to the artist.`,
	RunE: runEntryAdd,
}

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.AddCommand(entryAddCmd)

	entryAddCmd.Flags().String("artist", "", "artist name (required)")
	entryAddCmd.Flags().String("source", "", "revenue source: Concert, Sync, Streams, Merch, or Other (required)")
	entryAddCmd.Flags().String("amount", "", "amount, negatives allowed for refunds (required)")
	entryAddCmd.Flags().String("date", "", "revenue date (required)")
	entryAddCmd.Flags().String("description", "", "free-form description")
	entryAddCmd.Flags().String("integration", "", "originating platform name")
	entryAddCmd.Flags().String("track", "", "attribute to this track title")
	entryAddCmd.Flags().String("album", "", "attribute to this album title")
	entryAddCmd.Flags().String("campaign", "", "attribute to this campaign name")
	entryAddCmd.MarkFlagRequired("artist")
	entryAddCmd.MarkFlagRequired("source")
	entryAddCmd.MarkFlagRequired("amount")
	entryAddCmd.MarkFlagRequired("date")
}

func runEntryAdd(cmd *cobra.Command, args []string) error {
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))

	artistName, _ := cmd.Flags().GetString("artist")
	sourceText, _ := cmd.Flags().GetString("source")
	amountText, _ := cmd.Flags().GetString("amount")
	dateText, _ := cmd.Flags().GetString("date")
	description, _ := cmd.Flags().GetString("description")
	integration, _ := cmd.Flags().GetString("integration")
	trackTitle, _ := cmd.Flags().GetString("track")
	albumTitle, _ := cmd.Flags().GetString("album")
	campaignName, _ := cmd.Flags().GetString("campaign")

	amount, err := mapping.ParseAmount(amountText)
	if err != nil {
		return err
	}
	var revenueDate time.Time
	revenueDate, err = mapping.ParseDate(dateText, nil)
	if err != nil {
		return err
	}

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
	source, err := db.GetSourceByDescription(sourceText)
	if err != nil {
		return err
	}

	manual := engine.ManualEntry{
		ArtistID:    artist.ID,
		SourceID:    source.ID,
		Amount:      amount,
		RevenueDate: revenueDate,
		Description: description,
		Integration: integration,
	}
	if trackTitle != "" {
		track, err := db.GetTrackByTitle(artist.ID, trackTitle)
		if err != nil {
			return err
		}
		if track == nil {
			return fmt.Errorf("artist %q has no track %q", artist.Name, trackTitle)
		}
		manual.TrackID = track.ID
	}
	if albumTitle != "" {
		album, err := db.GetAlbumByTitle(artist.ID, albumTitle)
		if err != nil {
			return err
		}
		if album == nil {
			return fmt.Errorf("artist %q has no album %q", artist.Name, albumTitle)
		}
		manual.AlbumID = album.ID
	}
	if campaignName != "" {
		campaign, err := db.GetCampaignByName(artist.ID, campaignName)
		if err != nil {
			return err
		}
		if campaign == nil {
			return fmt.Errorf("artist %q has no campaign %q", artist.Name, campaignName)
		}
		manual.CampaignID = campaign.ID
	}

	eng := engine.New(db, engine.Options{})
	entry, err := eng.CreateManualEntry(manual)
	if err != nil {
		return err
	}

	util.SuccessLog("Recorded entry %d: %s %s for %s",
		entry.ID, source.Description, engine.Money{Amount: entry.Amount}, artist.Name)
	return nil
}
