package command

import (
	"context"

	"github.com/maauso/videoeditor-bridge/internal/bridge"
	"github.com/maauso/videoeditor-bridge/internal/media"
)

const (
	MethodGetVideoMetadata = "getVideoMetadata"
	CodeMetadataError      = "METADATA_ERROR"
)

// Metadata handles getVideoMetadata(videoPath). The reply is a
// *media.Metadata.
type Metadata struct {
	launcher *Launcher
	utility  media.Utility
}

// NewMetadata creates the getVideoMetadata command.
func NewMetadata(launcher *Launcher, utility media.Utility) *Metadata {
	return &Metadata{launcher: launcher, utility: utility}
}

// Execute implements bridge.Command.
func (c *Metadata) Execute(call *bridge.Call, result bridge.Result) {
	videoPath, ok := call.String("videoPath")
	if !ok {
		result.Error(bridge.CodeInvalidArguments, missingArguments("videoPath"), nil)
		return
	}

	c.launcher.Launch(MethodGetVideoMetadata, CodeMetadataError, result, func(ctx context.Context) (any, error) {
		meta, err := c.utility.GetVideoMetadata(ctx, videoPath)
		if err != nil {
			return nil, err
		}
		return meta, nil
	})
}
