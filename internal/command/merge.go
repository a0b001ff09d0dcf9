package command

import (
	"context"

	"github.com/maauso/videoeditor-bridge/internal/bridge"
	"github.com/maauso/videoeditor-bridge/internal/media"
)

const (
	MethodMergeVideos = "mergeVideos"
	CodeMergeError    = "MERGE_ERROR"
)

// Merge handles mergeVideos(videoPaths). An empty list is passed through and
// rejected by the media utility.
type Merge struct {
	launcher *Launcher
	utility  media.Utility
}

// NewMerge creates the mergeVideos command.
func NewMerge(launcher *Launcher, utility media.Utility) *Merge {
	return &Merge{launcher: launcher, utility: utility}
}

// Execute implements bridge.Command.
func (c *Merge) Execute(call *bridge.Call, result bridge.Result) {
	videoPaths, ok := call.Strings("videoPaths")
	if !ok {
		result.Error(bridge.CodeInvalidArguments, missingArguments("videoPaths"), nil)
		return
	}

	c.launcher.Launch(MethodMergeVideos, CodeMergeError, result, func(ctx context.Context) (any, error) {
		return c.utility.MergeVideos(ctx, videoPaths)
	})
}
