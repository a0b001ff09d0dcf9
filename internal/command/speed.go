package command

import (
	"context"

	"github.com/maauso/videoeditor-bridge/internal/bridge"
)

const (
	// MethodAdjustVideoSpeed is the bridge method name of AdjustSpeed.
	MethodAdjustVideoSpeed = "adjustVideoSpeed"
	// CodeAdjustSpeedError tags every failure of an adjustVideoSpeed operation.
	CodeAdjustSpeedError = "ADJUST_SPEED_ERROR"
)

// SpeedAdjuster is the part of media.Utility used by AdjustSpeed.
type SpeedAdjuster interface {
	AdjustVideoSpeed(ctx context.Context, videoPath string, speed float64) (string, error)
}

// AdjustSpeed handles adjustVideoSpeed.
//
// Arguments:
//   - videoPath (string, required): the source video.
//   - speed (number, required): playback multiplier; 2 plays twice as fast.
//
// The reply is the path of the new video. The multiplier itself is checked by
// the media utility, so a non-positive speed fails as ADJUST_SPEED_ERROR.
type AdjustSpeed struct {
	launcher *Launcher
	utility  SpeedAdjuster
}

// NewAdjustSpeed creates the adjustVideoSpeed command.
func NewAdjustSpeed(launcher *Launcher, utility SpeedAdjuster) *AdjustSpeed {
	return &AdjustSpeed{launcher: launcher, utility: utility}
}

// Execute implements bridge.Command.
func (c *AdjustSpeed) Execute(call *bridge.Call, result bridge.Result) {
	videoPath, okPath := call.String("videoPath")
	speed, okSpeed := call.Number("speed")
	if !okPath || !okSpeed {
		result.Error(bridge.CodeInvalidArguments, "Missing required arguments: videoPath or speedMultiplier", nil)
		return
	}

	c.launcher.Launch(MethodAdjustVideoSpeed, CodeAdjustSpeedError, result, func(ctx context.Context) (any, error) {
		return c.utility.AdjustVideoSpeed(ctx, videoPath, speed)
	})
}
