package voice

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jonas747/dca"
	log "github.com/sirupsen/logrus"
)

// DiscordConnector joins Discord voice channels.
type DiscordConnector struct {
	session *discordgo.Session
}

func NewDiscordConnector(session *discordgo.Session) *DiscordConnector {
	return &DiscordConnector{session: session}
}

func (c *DiscordConnector) Join(guildID, channelID string) (Connection, error) {
	vc, err := c.session.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}
	return &discordConnection{vc: vc}, nil
}

type discordConnection struct {
	vc *discordgo.VoiceConnection
}

// Play transcodes the stream with ffmpeg and sends opus frames until the
// track ends or ctx is cancelled.
func (c *discordConnection) Play(ctx context.Context, track *Track, volume float64, offset time.Duration) error {
	options := dca.StdEncodeOptions
	options.RawOutput = true
	options.Bitrate = 96
	options.Volume = dcaVolume(volume)
	options.StartTime = int(offset.Seconds())

	encoding, err := dca.EncodeFile(track.StreamURL, options)
	if err != nil {
		return fmt.Errorf("failed to start transcode: %w", err)
	}
	defer encoding.Cleanup()

	if err := c.vc.Speaking(true); err != nil {
		return fmt.Errorf("failed to set speaking: %w", err)
	}
	defer func() {
		if err := c.vc.Speaking(false); err != nil {
			log.WithError(err).Debug("failed to clear speaking state")
		}
	}()

	done := make(chan error, 1)
	dca.NewStream(encoding, c.vc, done)

	select {
	case err := <-done:
		if err != nil && err != io.EOF {
			return fmt.Errorf("stream ended abnormally: %w", err)
		}
		return nil
	case <-ctx.Done():
		// Cleanup kills ffmpeg; the stream drains immediately.
		encoding.Cleanup()
		return ctx.Err()
	}
}

func (c *discordConnection) Disconnect() error {
	return c.vc.Disconnect()
}

// dcaVolume maps a 0..1 volume onto dca's 0..512 scale, 256 being unity.
func dcaVolume(volume float64) int {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	return int(volume * 512)
}
