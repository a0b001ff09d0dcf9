package media

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// atempo accepts factors in [0.5, 2.0] on every ffmpeg build, so larger
// changes are expressed as a chain of filters.
const (
	minAtempo = 0.5
	maxAtempo = 2.0
)

// AdjustVideoSpeed retimes the video with setpts and, when the input has
// audio, the audio with a chain of atempo filters.
func (u *FFmpegUtility) AdjustVideoSpeed(ctx context.Context, videoPath string, speed float64) (string, error) {
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed <= 0 {
		return "", fmt.Errorf("%w: got %v", ErrInvalidSpeed, speed)
	}
	if err := checkSource(videoPath); err != nil {
		return "", err
	}

	meta, err := u.probe(ctx, videoPath)
	if err != nil {
		return "", err
	}

	filter := speedFilter(speed, meta.HasAudio)
	return u.produce(ctx, videoPath, "speed", ".mp4", func(output string) []string {
		args := []string{
			"-y",
			"-i", videoPath,
			"-filter_complex", filter,
			"-map", "[v]",
		}
		if meta.HasAudio {
			args = append(args, "-map", "[a]")
		}
		args = append(args, u.encodeArgs(u.profile.CRF)...)
		return append(args, "-movflags", "+faststart", output)
	})
}

// speedFilter builds the filter graph labelling its outputs [v] and [a].
func speedFilter(speed float64, withAudio bool) string {
	filter := "[0:v]setpts=PTS/" + formatFactor(speed) + "[v]"
	if withAudio {
		filter += ";[0:a]" + atempoChain(speed) + "[a]"
	}
	return filter
}

// atempoChain splits speed into atempo factors whose product is speed.
func atempoChain(speed float64) string {
	var factors []string
	for speed > maxAtempo {
		factors = append(factors, "atempo="+formatFactor(maxAtempo))
		speed /= maxAtempo
	}
	for speed < minAtempo {
		factors = append(factors, "atempo="+formatFactor(minAtempo))
		speed /= minAtempo
	}
	factors = append(factors, "atempo="+formatFactor(speed))
	return strings.Join(factors, ",")
}

func formatFactor(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
