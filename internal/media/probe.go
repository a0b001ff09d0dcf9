package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// probeOutput is the subset of `ffprobe -print_format json` we read.
type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType    string            `json:"codec_type"`
	CodecName    string            `json:"codec_name"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	Tags         map[string]string `json:"tags"`
	Disposition  struct {
		AttachedPic int `json:"attached_pic"`
	} `json:"disposition"`
	SideDataList []struct {
		Rotation *float64 `json:"rotation"`
	} `json:"side_data_list"`
}

type probeFormat struct {
	Duration string            `json:"duration"`
	Size     string            `json:"size"`
	BitRate  string            `json:"bit_rate"`
	Tags     map[string]string `json:"tags"`
}

// GetVideoMetadata runs ffprobe and describes the first video stream and the
// container.
func (u *FFmpegUtility) GetVideoMetadata(ctx context.Context, videoPath string) (*Metadata, error) {
	if err := checkSource(videoPath); err != nil {
		return nil, err
	}
	return u.probe(ctx, videoPath)
}

func (u *FFmpegUtility) probe(ctx context.Context, path string) (*Metadata, error) {
	// #nosec G204 - ffprobePath is set by the application, not user input
	cmd := exec.CommandContext(ctx, u.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("%w: %w, stderr: %s", ErrFFprobeExecution, err, strings.TrimSpace(stderr.String()))
	}

	return parseProbeOutput(stdout.Bytes())
}

// parseProbeOutput converts ffprobe JSON into Metadata.
func parseProbeOutput(data []byte) (*Metadata, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	meta := &Metadata{
		DurationMs: secondsToMillis(out.Format.Duration),
		Bitrate:    parseInt(out.Format.BitRate),
		SizeBytes:  parseInt(out.Format.Size),
		Title:      tag(out.Format.Tags, "title"),
		Author:     tag(out.Format.Tags, "artist", "author", "album_artist"),
		Date:       tag(out.Format.Tags, "date", "creation_time"),
	}

	foundVideo := false
	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			// Cover art is exposed as a video stream with attached_pic set.
			if foundVideo || s.Disposition.AttachedPic == 1 {
				continue
			}
			foundVideo = true
			meta.Width = s.Width
			meta.Height = s.Height
			meta.VideoCodec = s.CodecName
			meta.Rotation = streamRotation(s)
		case "audio":
			if !meta.HasAudio {
				meta.HasAudio = true
				meta.AudioCodec = s.CodecName
			}
		}
	}

	if !foundVideo {
		return nil, ErrNoVideoStream
	}
	return meta, nil
}

// streamRotation returns the clockwise display rotation in [0, 360).
// Older ffprobe builds report a "rotate" tag; newer ones a display matrix
// whose rotation is counter-clockwise.
func streamRotation(s probeStream) int {
	var deg float64
	if v, ok := s.Tags["rotate"]; ok {
		deg, _ = strconv.ParseFloat(v, 64)
	} else {
		for _, sd := range s.SideDataList {
			if sd.Rotation != nil {
				deg = -*sd.Rotation
				break
			}
		}
	}
	r := int(math.Round(deg)) % 360
	if r < 0 {
		r += 360
	}
	return r
}

func secondsToMillis(s string) int64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0
	}
	return int64(math.Round(f * 1000))
}

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// tag returns the first non-empty value among keys, matching case-insensitively.
func tag(tags map[string]string, keys ...string) string {
	for _, k := range keys {
		for tk, v := range tags {
			if strings.EqualFold(tk, k) && v != "" {
				return v
			}
		}
	}
	return ""
}
