package covenant

import "github.com/btcsuite/btclog"

// log is this subsystem's logger. It defaults to the disabled backend
// until the owning binary calls UseLogger, following the teacher's
// per-package subsystem-logger convention.
var log = btclog.Disabled

// UseLogger sets the subsystem logger used by this package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
