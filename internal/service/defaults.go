package service

import "time"

const (
	defaultAppendAttempts = 5
	defaultAppendBackoff  = 2 * time.Millisecond
	defaultMaxBackoff     = 50 * time.Millisecond
	defaultWorkerCount    = 8

	defaultQueueFlushSize     = 100
	defaultQueueFlushInterval = time.Second
	defaultQueueFlushRPS      = 50
)
