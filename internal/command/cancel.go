package command

import (
	"github.com/maauso/videoeditor-bridge/internal/bridge"
	"github.com/maauso/videoeditor-bridge/internal/operation"
)

// MethodCancelOperation is the bridge method name of Cancel.
const MethodCancelOperation = "cancelOperation"

// Cancel handles cancelOperation. With an operationId it cancels that
// operation; without one it cancels every running operation. The reply is
// true if anything was cancelled. It answers synchronously and is not an
// operation itself.
type Cancel struct {
	ops *operation.Manager
}

// NewCancel creates the cancelOperation command.
func NewCancel(ops *operation.Manager) *Cancel {
	return &Cancel{ops: ops}
}

// Execute implements bridge.Command.
func (c *Cancel) Execute(call *bridge.Call, result bridge.Result) {
	if !call.Has("operationId") {
		result.Success(c.ops.CancelAll() > 0)
		return
	}
	opID, ok := call.String("operationId")
	if !ok {
		result.Error(bridge.CodeInvalidArguments, invalidArgument("operationId", "a string"), nil)
		return
	}
	result.Success(c.ops.Cancel(opID))
}
