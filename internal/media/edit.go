package media

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// defaultThumbnailQuality is used when ThumbnailOptions.Quality is zero.
const defaultThumbnailQuality = 80

// TrimVideo re-encodes the [start, end) section so the cut is frame accurate.
func (u *FFmpegUtility) TrimVideo(ctx context.Context, videoPath string, start, end time.Duration) (string, error) {
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: start=%v end=%v", ErrInvalidRange, start, end)
	}
	if err := checkSource(videoPath); err != nil {
		return "", err
	}

	return u.produce(ctx, videoPath, "trim", ".mp4", func(output string) []string {
		args := []string{
			"-y",
			"-ss", formatSeconds(start.Seconds()),
			"-i", videoPath,
			"-t", formatSeconds((end - start).Seconds()),
		}
		args = append(args, u.encodeArgs(u.profile.CRF)...)
		return append(args, "-movflags", "+faststart", output)
	})
}

// ExtractAudio writes the first audio stream as AAC in an .m4a container.
func (u *FFmpegUtility) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	if err := checkSource(videoPath); err != nil {
		return "", err
	}
	meta, err := u.probe(ctx, videoPath)
	if err != nil {
		return "", err
	}
	if !meta.HasAudio {
		return "", fmt.Errorf("%w: %s", ErrNoAudioStream, videoPath)
	}

	return u.produce(ctx, videoPath, "audio", ".m4a", func(output string) []string {
		return []string{
			"-y",
			"-i", videoPath,
			"-vn",
			"-c:a", u.profile.AudioCodec,
			"-b:a", u.profile.AudioBitrate,
			output,
		}
	})
}

// RemoveAudio copies the video stream unchanged and drops every audio stream.
func (u *FFmpegUtility) RemoveAudio(ctx context.Context, videoPath string) (string, error) {
	if err := checkSource(videoPath); err != nil {
		return "", err
	}

	return u.produce(ctx, videoPath, "muted", sourceExt(videoPath), func(output string) []string {
		return []string{
			"-y",
			"-i", videoPath,
			"-map", "0:v",
			"-c:v", "copy",
			"-an",
			output,
		}
	})
}

// ScaleVideo scales to fit within width x height and pads with black bars.
// Odd dimensions are rounded up because yuv420p needs even sizes.
func (u *FFmpegUtility) ScaleVideo(ctx context.Context, videoPath string, width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	if err := checkSource(videoPath); err != nil {
		return "", err
	}
	width, height = even(width), even(height)

	filter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black,setsar=1",
		width, height, width, height,
	)
	return u.produce(ctx, videoPath, "scaled", ".mp4", func(output string) []string {
		args := []string{
			"-y",
			"-i", videoPath,
			"-vf", filter,
		}
		args = append(args, u.encodeArgs(u.profile.CRF)...)
		return append(args, output)
	})
}

// RotateVideo rotates clockwise. Negative and >= 360 values are normalised,
// so -90 is the same as 270.
func (u *FFmpegUtility) RotateVideo(ctx context.Context, videoPath string, degrees int) (string, error) {
	filter, err := rotationFilter(degrees)
	if err != nil {
		return "", err
	}
	if err := checkSource(videoPath); err != nil {
		return "", err
	}

	return u.produce(ctx, videoPath, "rotated", ".mp4", func(output string) []string {
		args := []string{"-y", "-i", videoPath}
		if filter == "" {
			return append(args, "-c", "copy", output)
		}
		args = append(args, "-vf", filter)
		args = append(args, u.encodeArgs(u.profile.CRF)...)
		return append(args, output)
	})
}

// rotationFilter maps a clockwise rotation to a video filter. A full turn
// needs no filter and yields "".
func rotationFilter(degrees int) (string, error) {
	if degrees%90 != 0 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidRotation, degrees)
	}
	switch ((degrees % 360) + 360) % 360 {
	case 90:
		return "transpose=1", nil
	case 180:
		return "hflip,vflip", nil
	case 270:
		return "transpose=2", nil
	default:
		return "", nil
	}
}

// GenerateThumbnail grabs the frame at opts.Position as a JPEG.
func (u *FFmpegUtility) GenerateThumbnail(ctx context.Context, videoPath string, opts ThumbnailOptions) (string, error) {
	if opts.Position < 0 {
		return "", fmt.Errorf("%w: position=%v", ErrInvalidRange, opts.Position)
	}
	if opts.Width < 0 || opts.Height < 0 {
		return "", fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, opts.Width, opts.Height)
	}
	if err := checkSource(videoPath); err != nil {
		return "", err
	}

	return u.produce(ctx, videoPath, "thumb", ".jpg", func(output string) []string {
		args := []string{
			"-y",
			"-ss", formatSeconds(opts.Position.Seconds()),
			"-i", videoPath,
			"-frames:v", "1",
			"-q:v", strconv.Itoa(jpegQScale(opts.Quality)),
		}
		if scale := thumbnailScale(opts.Width, opts.Height); scale != "" {
			args = append(args, "-vf", scale)
		}
		return append(args, output)
	})
}

// jpegQScale maps quality 1..100 onto ffmpeg's mjpeg qscale 31..2.
func jpegQScale(quality int) int {
	if quality == 0 {
		quality = defaultThumbnailQuality
	}
	quality = max(1, min(quality, 100))
	return 31 - (quality-1)*29/99
}

func thumbnailScale(width, height int) string {
	switch {
	case width > 0 && height > 0:
		return fmt.Sprintf("scale=%d:%d", width, height)
	case width > 0:
		return fmt.Sprintf("scale=%d:-2", width)
	case height > 0:
		return fmt.Sprintf("scale=-2:%d", height)
	default:
		return ""
	}
}

// CompressVideo re-encodes with the profile's compression CRF. A positive
// targetHeight downscales, keeping the aspect ratio.
func (u *FFmpegUtility) CompressVideo(ctx context.Context, videoPath string, targetHeight int) (string, error) {
	if targetHeight < 0 {
		return "", fmt.Errorf("%w: height=%d", ErrInvalidDimensions, targetHeight)
	}
	if err := checkSource(videoPath); err != nil {
		return "", err
	}

	return u.produce(ctx, videoPath, "compressed", ".mp4", func(output string) []string {
		args := []string{"-y", "-i", videoPath}
		if targetHeight > 0 {
			args = append(args, "-vf", fmt.Sprintf("scale=-2:%d", even(targetHeight)))
		}
		args = append(args, u.encodeArgs(u.profile.CompressCRF)...)
		return append(args, "-movflags", "+faststart", output)
	})
}

func even(n int) int {
	return n + n%2
}
