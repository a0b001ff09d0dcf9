package command

import (
	"context"

	"github.com/maauso/videoeditor-bridge/internal/bridge"
	"github.com/maauso/videoeditor-bridge/internal/media"
)

// Method names and error codes of the editing commands.
const (
	MethodTrimVideo         = "trimVideo"
	MethodExtractAudio      = "extractAudio"
	MethodRemoveAudio       = "removeAudio"
	MethodScaleVideo        = "scaleVideo"
	MethodRotateVideo       = "rotateVideo"
	MethodGenerateThumbnail = "generateThumbnail"
	MethodCompressVideo     = "compressVideo"

	CodeTrimError         = "TRIM_ERROR"
	CodeExtractAudioError = "EXTRACT_AUDIO_ERROR"
	CodeRemoveAudioError  = "REMOVE_AUDIO_ERROR"
	CodeScaleError        = "SCALE_ERROR"
	CodeRotateError       = "ROTATE_ERROR"
	CodeThumbnailError    = "THUMBNAIL_ERROR"
	CodeCompressError     = "COMPRESS_ERROR"
)

// Trim handles trimVideo(videoPath, startTimeMs, endTimeMs).
type Trim struct {
	launcher *Launcher
	utility  media.Utility
}

// NewTrim creates the trimVideo command.
func NewTrim(launcher *Launcher, utility media.Utility) *Trim {
	return &Trim{launcher: launcher, utility: utility}
}

// Execute implements bridge.Command.
func (c *Trim) Execute(call *bridge.Call, result bridge.Result) {
	videoPath, okPath := call.String("videoPath")
	start, okStart := call.Number("startTimeMs")
	end, okEnd := call.Number("endTimeMs")
	if !okPath || !okStart || !okEnd {
		result.Error(bridge.CodeInvalidArguments, missingArguments("videoPath", "startTimeMs", "endTimeMs"), nil)
		return
	}

	c.launcher.Launch(MethodTrimVideo, CodeTrimError, result, func(ctx context.Context) (any, error) {
		return c.utility.TrimVideo(ctx, videoPath, millis(start), millis(end))
	})
}

// ExtractAudio handles extractAudio(videoPath).
type ExtractAudio struct {
	launcher *Launcher
	utility  media.Utility
}

// NewExtractAudio creates the extractAudio command.
func NewExtractAudio(launcher *Launcher, utility media.Utility) *ExtractAudio {
	return &ExtractAudio{launcher: launcher, utility: utility}
}

// Execute implements bridge.Command.
func (c *ExtractAudio) Execute(call *bridge.Call, result bridge.Result) {
	videoPath, ok := call.String("videoPath")
	if !ok {
		result.Error(bridge.CodeInvalidArguments, missingArguments("videoPath"), nil)
		return
	}

	c.launcher.Launch(MethodExtractAudio, CodeExtractAudioError, result, func(ctx context.Context) (any, error) {
		return c.utility.ExtractAudio(ctx, videoPath)
	})
}

// RemoveAudio handles removeAudio(videoPath).
type RemoveAudio struct {
	launcher *Launcher
	utility  media.Utility
}

// NewRemoveAudio creates the removeAudio command.
func NewRemoveAudio(launcher *Launcher, utility media.Utility) *RemoveAudio {
	return &RemoveAudio{launcher: launcher, utility: utility}
}

// Execute implements bridge.Command.
func (c *RemoveAudio) Execute(call *bridge.Call, result bridge.Result) {
	videoPath, ok := call.String("videoPath")
	if !ok {
		result.Error(bridge.CodeInvalidArguments, missingArguments("videoPath"), nil)
		return
	}

	c.launcher.Launch(MethodRemoveAudio, CodeRemoveAudioError, result, func(ctx context.Context) (any, error) {
		return c.utility.RemoveAudio(ctx, videoPath)
	})
}

// Scale handles scaleVideo(videoPath, width, height).
type Scale struct {
	launcher *Launcher
	utility  media.Utility
}

// NewScale creates the scaleVideo command.
func NewScale(launcher *Launcher, utility media.Utility) *Scale {
	return &Scale{launcher: launcher, utility: utility}
}

// Execute implements bridge.Command.
func (c *Scale) Execute(call *bridge.Call, result bridge.Result) {
	videoPath, okPath := call.String("videoPath")
	width, okWidth := call.Int("width")
	height, okHeight := call.Int("height")
	if !okPath || !okWidth || !okHeight {
		result.Error(bridge.CodeInvalidArguments, missingArguments("videoPath", "width", "height"), nil)
		return
	}

	c.launcher.Launch(MethodScaleVideo, CodeScaleError, result, func(ctx context.Context) (any, error) {
		return c.utility.ScaleVideo(ctx, videoPath, width, height)
	})
}

// Rotate handles rotateVideo(videoPath, rotationDegrees).
type Rotate struct {
	launcher *Launcher
	utility  media.Utility
}

// NewRotate creates the rotateVideo command.
func NewRotate(launcher *Launcher, utility media.Utility) *Rotate {
	return &Rotate{launcher: launcher, utility: utility}
}

// Execute implements bridge.Command.
func (c *Rotate) Execute(call *bridge.Call, result bridge.Result) {
	videoPath, okPath := call.String("videoPath")
	degrees, okDegrees := call.Int("rotationDegrees")
	if !okPath || !okDegrees {
		result.Error(bridge.CodeInvalidArguments, missingArguments("videoPath", "rotationDegrees"), nil)
		return
	}

	c.launcher.Launch(MethodRotateVideo, CodeRotateError, result, func(ctx context.Context) (any, error) {
		return c.utility.RotateVideo(ctx, videoPath, degrees)
	})
}

// Thumbnail handles generateThumbnail(videoPath, positionMs) with optional
// quality, width and height.
type Thumbnail struct {
	launcher *Launcher
	utility  media.Utility
}

// NewThumbnail creates the generateThumbnail command.
func NewThumbnail(launcher *Launcher, utility media.Utility) *Thumbnail {
	return &Thumbnail{launcher: launcher, utility: utility}
}

// Execute implements bridge.Command.
func (c *Thumbnail) Execute(call *bridge.Call, result bridge.Result) {
	videoPath, okPath := call.String("videoPath")
	position, okPosition := call.Number("positionMs")
	if !okPath || !okPosition {
		result.Error(bridge.CodeInvalidArguments, missingArguments("videoPath", "positionMs"), nil)
		return
	}

	opts := media.ThumbnailOptions{Position: millis(position)}
	for _, arg := range []struct {
		name string
		dst  *int
	}{
		{"quality", &opts.Quality},
		{"width", &opts.Width},
		{"height", &opts.Height},
	} {
		v, ok := optionalInt(call, arg.name)
		if !ok {
			result.Error(bridge.CodeInvalidArguments, invalidArgument(arg.name, "a number"), nil)
			return
		}
		*arg.dst = v
	}

	c.launcher.Launch(MethodGenerateThumbnail, CodeThumbnailError, result, func(ctx context.Context) (any, error) {
		return c.utility.GenerateThumbnail(ctx, videoPath, opts)
	})
}

// Compress handles compressVideo(videoPath) with an optional targetHeight.
type Compress struct {
	launcher *Launcher
	utility  media.Utility
}

// NewCompress creates the compressVideo command.
func NewCompress(launcher *Launcher, utility media.Utility) *Compress {
	return &Compress{launcher: launcher, utility: utility}
}

// Execute implements bridge.Command.
func (c *Compress) Execute(call *bridge.Call, result bridge.Result) {
	videoPath, ok := call.String("videoPath")
	if !ok {
		result.Error(bridge.CodeInvalidArguments, missingArguments("videoPath"), nil)
		return
	}
	targetHeight, ok := optionalInt(call, "targetHeight")
	if !ok {
		result.Error(bridge.CodeInvalidArguments, invalidArgument("targetHeight", "a number"), nil)
		return
	}

	c.launcher.Launch(MethodCompressVideo, CodeCompressError, result, func(ctx context.Context) (any, error) {
		return c.utility.CompressVideo(ctx, videoPath, targetHeight)
	})
}
