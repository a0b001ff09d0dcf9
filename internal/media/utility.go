// Package media wraps the ffmpeg and ffprobe command-line tools behind the
// Utility interface used by the bridge commands. Every editing operation reads
// a source file and writes a brand-new output file, returning its path.
package media

import (
	"context"
	"time"
)

// Utility defines the video-editing primitives exposed over the bridge.
// Implementations must honour ctx: cancelling it stops the underlying work.
type Utility interface {
	// AdjustVideoSpeed writes a copy of the video played back speed times
	// faster. Audio, if present, is retimed to stay in sync.
	AdjustVideoSpeed(ctx context.Context, videoPath string, speed float64) (string, error)

	// TrimVideo keeps the [start, end) section of the video.
	TrimVideo(ctx context.Context, videoPath string, start, end time.Duration) (string, error)

	// MergeVideos concatenates the videos in order.
	MergeVideos(ctx context.Context, videoPaths []string) (string, error)

	// ExtractAudio writes the audio track to an AAC file.
	ExtractAudio(ctx context.Context, videoPath string) (string, error)

	// RemoveAudio writes a copy of the video without audio.
	RemoveAudio(ctx context.Context, videoPath string) (string, error)

	// ScaleVideo fits the video into width x height, padding to keep the
	// aspect ratio.
	ScaleVideo(ctx context.Context, videoPath string, width, height int) (string, error)

	// RotateVideo rotates the video clockwise by a multiple of 90 degrees.
	RotateVideo(ctx context.Context, videoPath string, degrees int) (string, error)

	// GenerateThumbnail writes a single JPEG frame.
	GenerateThumbnail(ctx context.Context, videoPath string, opts ThumbnailOptions) (string, error)

	// CompressVideo re-encodes the video at a lower quality, optionally
	// reducing its height.
	CompressVideo(ctx context.Context, videoPath string, targetHeight int) (string, error)

	// GetVideoMetadata describes the video without modifying it.
	GetVideoMetadata(ctx context.Context, videoPath string) (*Metadata, error)
}

// OutputAllocator reserves output files for operation results.
// storage.LocalStorage satisfies it.
type OutputAllocator interface {
	NewOutputPath(source, tag, ext string) (string, error)
}

// ThumbnailOptions controls GenerateThumbnail.
type ThumbnailOptions struct {
	// Position is the timestamp of the captured frame.
	Position time.Duration
	// Quality is the JPEG quality from 1 (worst) to 100 (best). Zero means 80.
	Quality int
	// Width and Height scale the frame. Zero keeps the source size; a single
	// non-zero value keeps the aspect ratio.
	Width  int
	Height int
}

// Metadata describes a video file.
type Metadata struct {
	DurationMs int64  `json:"durationMs"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Rotation   int    `json:"rotation"`
	Bitrate    int64  `json:"bitrate"`
	SizeBytes  int64  `json:"sizeBytes"`
	VideoCodec string `json:"videoCodec"`
	AudioCodec string `json:"audioCodec,omitempty"`
	HasAudio   bool   `json:"hasAudio"`
	Title      string `json:"title,omitempty"`
	Author     string `json:"author,omitempty"`
	Date       string `json:"date,omitempty"`
}
