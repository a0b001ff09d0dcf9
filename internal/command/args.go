package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/maauso/videoeditor-bridge/internal/bridge"
)

// missingArguments formats the INVALID_ARGUMENTS message for the given names,
// e.g. "Missing required arguments: videoPath, width or height".
func missingArguments(names ...string) string {
	list := names[0]
	if n := len(names); n > 1 {
		list = strings.Join(names[:n-1], ", ") + " or " + names[n-1]
	}
	return "Missing required arguments: " + list
}

// invalidArgument formats the INVALID_ARGUMENTS message for an optional
// argument that is present with the wrong type.
func invalidArgument(name, want string) string {
	return fmt.Sprintf("Invalid argument: %s must be %s", name, want)
}

// optionalInt reads an optional numeric argument. ok is false only when the
// argument is present but not a number.
func optionalInt(call *bridge.Call, name string) (value int, ok bool) {
	if !call.Has(name) {
		return 0, true
	}
	return call.Int(name)
}

// millis converts a millisecond count from the bridge into a Duration.
func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
