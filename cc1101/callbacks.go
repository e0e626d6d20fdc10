package cc1101

import (
	"os"
	"time"
)

// Callbacks provides hooks for transfer events.
// All callbacks are optional - nil callbacks use default behavior.
type Callbacks struct {
	// OnFileSave is the external file sink: it receives a completed file
	// and returns the path it was written to. Returning a cancelled error
	// drops the file (the save prompt was dismissed); any other error is
	// surfaced as a sink error. The transfer context is already consumed
	// either way - there is no re-save retry.
	// If nil, the file is written to the suggested name in the working
	// directory.
	OnFileSave func(suggestedName string, data []byte) (string, error)

	// OnProgress is called per fragment during a send.
	// transferred/total are fragment counts; rate is fragments per second.
	OnProgress func(filename string, transferred, total int64, rate float64)

	// OnFileStart is called when a send starts.
	OnFileStart func(filename string, size int64)

	// OnFileComplete is called when a send or receive completes.
	OnFileComplete func(filename string, byteCount int64, duration time.Duration)

	// OnStatus is called for free-text status lines from the gateway.
	OnStatus func(text string)

	// OnFileAnnounce is called when the remote announces an incoming file.
	OnFileAnnounce func(filename string, fragments, byteLength int)

	// OnFileEnd is called when the remote announces the end of a file.
	OnFileEnd func(filename string)

	// OnMode is called when a mode token arrives on the link.
	OnMode func(kind LineKind)

	// OnUnknown is called for lines that match no protocol form, such as
	// gateway boot chatter. Interactive frontends mirror these to the
	// terminal; by default they are dropped.
	OnUnknown func(text string)

	// OnError is called when an error occurs; context describes where.
	// The receive loop keeps running after protocol errors, so this fires
	// per dropped line, not per terminated transfer.
	OnError func(err error, context string)
}

// defaultCallbacks returns a set of callbacks with default implementations.
func defaultCallbacks() *Callbacks {
	return &Callbacks{
		OnFileSave: func(suggestedName string, data []byte) (string, error) {
			if err := os.WriteFile(suggestedName, data, 0644); err != nil {
				return "", err
			}
			return suggestedName, nil
		},
		OnProgress:     func(string, int64, int64, float64) {},
		OnFileStart:    func(string, int64) {},
		OnFileComplete: func(string, int64, time.Duration) {},
		OnStatus:       func(string) {},
		OnFileAnnounce: func(string, int, int) {},
		OnFileEnd:      func(string) {},
		OnMode:         func(LineKind) {},
		OnUnknown:      func(string) {},
		OnError:        func(error, string) {},
	}
}

// mergeCallbacks merges user callbacks with defaults.
// User callbacks override defaults, nil callbacks use defaults.
func mergeCallbacks(user *Callbacks) *Callbacks {
	if user == nil {
		return defaultCallbacks()
	}

	result := defaultCallbacks()

	if user.OnFileSave != nil {
		result.OnFileSave = user.OnFileSave
	}
	if user.OnProgress != nil {
		result.OnProgress = user.OnProgress
	}
	if user.OnFileStart != nil {
		result.OnFileStart = user.OnFileStart
	}
	if user.OnFileComplete != nil {
		result.OnFileComplete = user.OnFileComplete
	}
	if user.OnStatus != nil {
		result.OnStatus = user.OnStatus
	}
	if user.OnFileAnnounce != nil {
		result.OnFileAnnounce = user.OnFileAnnounce
	}
	if user.OnFileEnd != nil {
		result.OnFileEnd = user.OnFileEnd
	}
	if user.OnMode != nil {
		result.OnMode = user.OnMode
	}
	if user.OnUnknown != nil {
		result.OnUnknown = user.OnUnknown
	}
	if user.OnError != nil {
		result.OnError = user.OnError
	}

	return result
}
