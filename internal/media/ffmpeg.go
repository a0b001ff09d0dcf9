package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// Static errors for media operations.
var (
	// ErrSourceNotFound is returned when an input file does not exist.
	ErrSourceNotFound = errors.New("source file not found")
	// ErrInvalidSpeed is returned when the speed multiplier is not a positive finite number.
	ErrInvalidSpeed = errors.New("invalid speed: must be a positive number")
	// ErrInvalidRange is returned when a time range or position is unusable.
	ErrInvalidRange = errors.New("invalid time range")
	// ErrInvalidDimensions is returned when the provided dimensions are not positive.
	ErrInvalidDimensions = errors.New("invalid dimensions: width and height must be positive")
	// ErrInvalidRotation is returned when the rotation is not a multiple of 90 degrees.
	ErrInvalidRotation = errors.New("invalid rotation: must be a multiple of 90 degrees")
	// ErrUnsafePath is returned for input paths containing line breaks, which
	// the concat demuxer would read as separate directives.
	ErrUnsafePath = errors.New("path contains a line break")
	// ErrNoVideoPaths is returned when no video paths are provided for merging.
	ErrNoVideoPaths = errors.New("no video paths provided")
	// ErrNoVideoStream is returned when the input has no video stream.
	ErrNoVideoStream = errors.New("input has no video stream")
	// ErrNoAudioStream is returned when audio is required but the input has none.
	ErrNoAudioStream = errors.New("input has no audio stream")
	// ErrFFprobeExecution is returned when ffprobe command fails.
	ErrFFprobeExecution = errors.New("ffprobe execution failed")
	// ErrOutputRequired is returned when no OutputAllocator is configured.
	ErrOutputRequired = errors.New("output allocator is required")
)

// Compile-time check that FFmpegUtility implements Utility.
var _ Utility = (*FFmpegUtility)(nil)

// FFmpegUtility implements Utility using the ffmpeg and ffprobe CLIs.
type FFmpegUtility struct {
	ffmpegPath  string
	ffprobePath string
	outputs     OutputAllocator
	profile     Profile
}

// Option configures an FFmpegUtility.
type Option func(*FFmpegUtility)

// WithFFmpegPath sets a custom ffmpeg executable path.
func WithFFmpegPath(path string) Option {
	return func(u *FFmpegUtility) {
		if path != "" {
			u.ffmpegPath = path
		}
	}
}

// WithFFprobePath sets a custom ffprobe executable path.
func WithFFprobePath(path string) Option {
	return func(u *FFmpegUtility) {
		if path != "" {
			u.ffprobePath = path
		}
	}
}

// WithProfile sets the encoding profile used for re-encoded outputs.
func WithProfile(p Profile) Option {
	return func(u *FFmpegUtility) {
		u.profile = p
	}
}

// NewFFmpegUtility creates an FFmpegUtility writing results through outputs.
// Tool paths default to "ffmpeg" and "ffprobe" (found via PATH).
func NewFFmpegUtility(outputs OutputAllocator, opts ...Option) (*FFmpegUtility, error) {
	if outputs == nil {
		return nil, ErrOutputRequired
	}
	u := &FFmpegUtility{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		outputs:     outputs,
		profile:     DefaultProfile(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

// VerifyInstalled checks that ffmpeg and ffprobe can be executed.
func (u *FFmpegUtility) VerifyInstalled(ctx context.Context) error {
	for _, bin := range []string{u.ffmpegPath, u.ffprobePath} {
		// #nosec G204 - tool paths are set by the application, not user input
		if err := exec.CommandContext(ctx, bin, "-version").Run(); err != nil {
			return fmt.Errorf("%s not found or not executable: %w", bin, err)
		}
	}
	return nil
}

// produce reserves an output file, runs ffmpeg with the arguments built for
// it, and removes the output again if ffmpeg fails.
func (u *FFmpegUtility) produce(ctx context.Context, source, tag, ext string, build func(output string) []string) (string, error) {
	output, err := u.outputs.NewOutputPath(source, tag, ext)
	if err != nil {
		return "", fmt.Errorf("allocate output: %w", err)
	}
	if err := u.runFFmpeg(ctx, build(output)); err != nil {
		_ = os.Remove(output)
		return "", err
	}
	return output, nil
}

// encodeArgs returns the video and audio encoder settings of the profile.
func (u *FFmpegUtility) encodeArgs(crf int) []string {
	return []string{
		"-c:v", u.profile.VideoCodec,
		"-preset", u.profile.Preset,
		"-crf", strconv.Itoa(crf),
		"-pix_fmt", "yuv420p",
		"-c:a", u.profile.AudioCodec,
		"-b:a", u.profile.AudioBitrate,
	}
}

// runFFmpeg executes ffmpeg with the given arguments and returns an error
// containing stderr output if the command fails.
func (u *FFmpegUtility) runFFmpeg(ctx context.Context, args []string) error {
	args = append([]string{"-hide_banner", "-nostdin"}, args...)

	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, u.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &FFmpegError{
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}
	return nil
}

// FFmpegError represents an error from running ffmpeg, including the stderr output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}

// checkSource verifies that path names an existing regular file.
func checkSource(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrSourceNotFound, path)
	}
	return nil
}

// sourceExt returns the extension of path, or ".mp4" if it has none.
func sourceExt(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		return ext
	}
	return ".mp4"
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 - src was checked by the caller
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600) // #nosec G304 - dst comes from the output allocator
	if err != nil {
		return fmt.Errorf("open destination file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy file: %w", err)
	}
	return out.Close()
}

func formatSeconds(d float64) string {
	return strconv.FormatFloat(d, 'f', 3, 64)
}
