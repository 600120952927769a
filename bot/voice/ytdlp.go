package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// YtdlpResolver resolves queries with the yt-dlp binary. Free text queries
// are searched; URLs are fetched directly.
type YtdlpResolver struct {
	// Binary is the yt-dlp executable, "yt-dlp" when empty.
	Binary string
}

type ytdlpOutput struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	WebpageURL string  `json:"webpage_url"`
	Duration   float64 `json:"duration"`
}

func (r *YtdlpResolver) Resolve(ctx context.Context, query string) (*Track, error) {
	binary := r.Binary
	if binary == "" {
		binary = "yt-dlp"
	}

	cmd := exec.CommandContext(ctx, binary,
		"--default-search", "ytsearch",
		"--no-playlist",
		"-f", "bestaudio",
		"-j",
		query,
	)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("yt-dlp failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("failed to run yt-dlp: %w", err)
	}

	var parsed ytdlpOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}
	if parsed.URL == "" {
		return nil, fmt.Errorf("no playable stream for %q", query)
	}

	return &Track{
		Title:     parsed.Title,
		PageURL:   parsed.WebpageURL,
		StreamURL: parsed.URL,
		Duration:  time.Duration(parsed.Duration * float64(time.Second)),
	}, nil
}
