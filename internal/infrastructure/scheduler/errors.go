package scheduler

import "errors"

// ErrSweeperNotRunning is returned when a sweep is triggered on a stopped sweeper
var ErrSweeperNotRunning = errors.New("expiry sweeper is not running")
