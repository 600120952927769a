package voice

import (
	"context"
	"time"
)

// Track is a resolved, playable audio item.
type Track struct {
	Title       string
	PageURL     string
	StreamURL   string
	Duration    time.Duration
	RequesterID string
}

// TrackResolver turns a user query, a URL or free text, into a playable
// track.
type TrackResolver interface {
	Resolve(ctx context.Context, query string) (*Track, error)
}

// Connector joins voice channels on the chat platform.
type Connector interface {
	Join(guildID, channelID string) (Connection, error)
}

// Connection is one live voice channel link. Play blocks until the track
// ends or ctx is cancelled; it is called from the player's playback
// goroutine. A non-zero offset starts the stream that far into the track,
// which is how a volume change restarts the running stream in place.
type Connection interface {
	Play(ctx context.Context, track *Track, volume float64, offset time.Duration) error
	Disconnect() error
}
