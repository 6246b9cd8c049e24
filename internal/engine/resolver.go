package engine

import (
	"fmt"
	"time"

	"github.com/mika/artist-ledger/internal/store"
	"github.com/mika/artist-ledger/internal/util"
	"github.com/shopspring/decimal"
)

// storeResolver backs the mapping engine's name resolution with the
// store. Create-if-absent inserts go straight to the reference tables;
// only the ledger itself needs transactional discipline.
type storeResolver struct {
	store *store.Store
}

func (r *storeResolver) ResolveArtist(name string, create bool) (int64, error) {
	artist, err := r.store.GetArtistByName(name)
	if err != nil {
		return 0, err
	}
	if artist != nil {
		return artist.ID, nil
	}
	if !create {
		return 0, fmt.Errorf("%w: artist %q", util.ErrNotFound, name)
	}

	artist = &store.Artist{Name: name}
	if err := r.store.InsertArtist(artist); err != nil {
		return 0, err
	}
	util.DebugLog("created artist %q (%d) during import", artist.Name, artist.ID)
	return artist.ID, nil
}

func (r *storeResolver) ResolveSource(description string) (int64, error) {
	source, err := r.store.GetSourceByDescription(description)
	if err != nil {
		return 0, err
	}
	return source.ID, nil
}

func (r *storeResolver) ResolveAlbum(artistID int64, title string, create bool) (int64, error) {
	album, err := r.store.GetAlbumByTitle(artistID, title)
	if err != nil {
		return 0, err
	}
	if album != nil {
		return album.ID, nil
	}
	if !create {
		return 0, fmt.Errorf("%w: album %q", util.ErrNotFound, title)
	}

	album = &store.Album{ArtistID: artistID, Title: title}
	if err := r.store.InsertAlbum(album); err != nil {
		return 0, err
	}
	util.DebugLog("created album %q (%d) during import", album.Title, album.ID)
	return album.ID, nil
}

func (r *storeResolver) ResolveTrack(artistID int64, title string, create bool) (int64, error) {
	track, err := r.store.GetTrackByTitle(artistID, title)
	if err != nil {
		return 0, err
	}
	if track != nil {
		return track.ID, nil
	}
	if !create {
		return 0, fmt.Errorf("%w: track %q", util.ErrNotFound, title)
	}

	track = &store.Track{ArtistID: artistID, Title: title}
	if err := r.store.InsertTrack(track); err != nil {
		return 0, err
	}
	util.DebugLog("created track %q (%d) during import", track.Title, track.ID)
	return track.ID, nil
}

func (r *storeResolver) ResolveCampaign(artistID int64, name string) (int64, error) {
	campaign, err := r.store.GetCampaignByName(artistID, name)
	if err != nil {
		return 0, err
	}
	if campaign == nil {
		return 0, fmt.Errorf("%w: campaign %q", util.ErrNotFound, name)
	}
	return campaign.ID, nil
}

func (r *storeResolver) HasDuplicate(artistID, sourceID int64, amount decimal.Decimal, revenueDate time.Time, description string) (bool, error) {
	return r.store.HasDuplicate(artistID, sourceID, amount, revenueDate, description)
}
