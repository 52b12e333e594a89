package webcface

import (
	"fmt"

	"github.com/golang/glog"
)

// Logging convention in the `webcface` package:
// Info:
//     abnormal events. Silent on normal operation except one time connection events.
//     this includes:
//     - connect failures and disconnects
//     - protocol messages that reference unknown ids
//     - recovered panics from user handlers (Warning)
// V(1):
//     connection lifecycle with the connection id
// V(2):
//     per batch and per message trace. Filter by the connection id.

const LogLevelConnect glog.Level = 1
const LogLevelTrace glog.Level = 2

type LogFunction func(string, ...any)

func LogFn(level glog.Level, tag string) LogFunction {
	return func(format string, a ...any) {
		if glog.V(level) {
			m := fmt.Sprintf(format, a...)
			glog.InfoDepth(1, fmt.Sprintf("%s: %s", tag, m))
		}
	}
}

func SubLogFn(log LogFunction, tag string) LogFunction {
	return func(format string, a ...any) {
		m := fmt.Sprintf(format, a...)
		log("%s: %s", tag, m)
	}
}
