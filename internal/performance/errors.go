package performance

import "errors"

// ErrPoolStopped is returned for jobs offered to a pool that is not running.
var ErrPoolStopped = errors.New("worker pool is not running")
