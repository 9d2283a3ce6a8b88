package editor

import (
	"fmt"

	"go.uber.org/zap"
)

// Result is the outcome of one editing operation. Expected failures (missing
// nodes, boundary conditions, empty input) come back as Success=false with a
// message; no public operation panics or returns an error.
type Result struct {
	Success bool
	Message string
	Details map[string]any
}

func success(msg string) Result {
	return Result{Success: true, Message: msg, Details: map[string]any{}}
}

func failure(msg string) Result {
	return Result{Success: false, Message: msg, Details: map[string]any{}}
}

func (r Result) with(key string, v any) Result {
	if r.Details == nil {
		r.Details = map[string]any{}
	}
	r.Details[key] = v
	return r
}

// guard converts an escaped panic at a public operation boundary into a
// failure Result.
func guard(res *Result, log *zap.SugaredLogger, op string) {
	if r := recover(); r != nil {
		if log != nil {
			log.Errorw("operation panicked", "op", op, "panic", r)
		}
		*res = failure(fmt.Sprintf("%s failed: internal error: %v", op, r))
	}
}
