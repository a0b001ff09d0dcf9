package command

import (
	"github.com/maauso/videoeditor-bridge/internal/bridge"
	"github.com/maauso/videoeditor-bridge/internal/media"
	"github.com/maauso/videoeditor-bridge/internal/operation"
)

// Register adds every command to d. Operations run through a Launcher bound
// to ops; exports go through uploader.
func Register(d *bridge.Dispatcher, launcher *Launcher, ops *operation.Manager, utility media.Utility, uploader Uploader) {
	d.Register(MethodAdjustVideoSpeed, NewAdjustSpeed(launcher, utility))
	d.Register(MethodTrimVideo, NewTrim(launcher, utility))
	d.Register(MethodMergeVideos, NewMerge(launcher, utility))
	d.Register(MethodExtractAudio, NewExtractAudio(launcher, utility))
	d.Register(MethodRemoveAudio, NewRemoveAudio(launcher, utility))
	d.Register(MethodScaleVideo, NewScale(launcher, utility))
	d.Register(MethodRotateVideo, NewRotate(launcher, utility))
	d.Register(MethodGenerateThumbnail, NewThumbnail(launcher, utility))
	d.Register(MethodCompressVideo, NewCompress(launcher, utility))
	d.Register(MethodGetVideoMetadata, NewMetadata(launcher, utility))
	d.Register(MethodExportVideo, NewExport(launcher, uploader))
	d.Register(MethodCancelOperation, NewCancel(ops))
}
