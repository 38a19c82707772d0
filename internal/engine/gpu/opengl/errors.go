package opengl

import "fmt"

// GLError reports a non-zero glGetError after an upload.
type GLError struct {
	Op   string
	Code uint32
}

func (e *GLError) Error() string {
	return fmt.Sprintf("%s: GL error 0x%04X (%s)", e.Op, e.Code, errorName(e.Code))
}

// maxQueuedErrors bounds the drain loop. A lost context may report an error
// on every call.
const maxQueuedErrors = 16

// checkError drains the GL error queue and reports the first queued error
// as a *GLError, or nil when the queue was empty.
func checkError(op string, getError func() uint32) error {
	var first uint32
	for i := 0; i < maxQueuedErrors; i++ {
		code := getError()
		if code == 0 {
			break
		}
		if first == 0 {
			first = code
		}
	}
	if first != 0 {
		return &GLError{Op: op, Code: first}
	}
	return nil
}

func errorName(code uint32) string {
	switch code {
	case 0x0500:
		return "INVALID_ENUM"
	case 0x0501:
		return "INVALID_VALUE"
	case 0x0502:
		return "INVALID_OPERATION"
	case 0x0505:
		return "OUT_OF_MEMORY"
	case 0x0506:
		return "INVALID_FRAMEBUFFER_OPERATION"
	default:
		return "unknown"
	}
}
