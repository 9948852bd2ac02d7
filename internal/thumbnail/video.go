package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"homeserver/internal/logging"
)

// extractVideoFrame grabs a single frame roughly 10% into the video, which
// skips past black lead-ins and title cards on most content. Videos whose
// duration cannot be probed, and seeks that land past the end of short
// clips, fall back to the first decodable frame.
func extractVideoFrame(ctx context.Context, path string) (image.Image, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	if dur, err := probeDuration(ctx, path); err == nil && dur > 0 {
		offset := dur / 10
		img, err := runFFmpegFrame(ctx, path, offset)
		if err == nil {
			return img, nil
		}
		logging.Debug("Frame extraction at %s failed for %s: %v, retrying at start",
			offset, filepath.Base(path), err)
	} else if err != nil {
		logging.Debug("Duration probe failed for %s: %v", filepath.Base(path), err)
	}

	img, err := runFFmpegFrame(ctx, path, 0)
	if err != nil {
		return nil, &CodecError{Path: path, Err: err}
	}
	return img, nil
}

// probeDuration asks ffprobe for the container duration in seconds.
func probeDuration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %v, stderr: %s", err, stderr.String())
	}

	raw := strings.TrimSpace(stdout.String())
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable duration %q: %w", raw, err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func runFFmpegFrame(ctx context.Context, path string, offset time.Duration) (image.Image, error) {
	args := []string{}
	if offset > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.3f", offset.Seconds()))
	}
	args = append(args,
		"-i", path,
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %v, stderr: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for %s", filepath.Base(path))
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decode ffmpeg output: %w", err)
	}
	return img, nil
}
