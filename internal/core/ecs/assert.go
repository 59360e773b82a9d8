package ecs

import "go.uber.org/zap"

// violation reports a broken caller contract: logged at error level, then
// fatal in debug builds (-tags debug). Release builds carry on and the
// offending operation is skipped by the caller.
func violation(log *zap.Logger, msg string, fields ...zap.Field) {
	if log != nil {
		log.Error(msg, fields...)
	}
	if debugAssertions {
		panic("ecs: " + msg)
	}
}
