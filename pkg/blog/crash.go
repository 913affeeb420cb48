package blog

import (
	"fmt"
	"sync/atomic"
)

// CrashHandler receives the formatted message of a crash.
type CrashHandler func(msg string)

var crashHandler atomic.Pointer[CrashHandler]

// SetCrashHandler installs h. Passing nil restores the default handler,
// which logs the message at error level.
func SetCrashHandler(h CrashHandler) {
	if h == nil {
		crashHandler.Store(nil)
		return
	}
	crashHandler.Store(&h)
}

// Crash reports an unrecoverable condition and panics with the message.
// The handler runs before the panic; if the handler itself does not
// terminate the process, the panic does.
func Crash(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if h := crashHandler.Load(); h != nil {
		(*h)(msg)
	} else {
		Error("crash: "+msg, "fatal", true)
	}
	panic(msg)
}
