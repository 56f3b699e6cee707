package ctxutil

import (
	"context"
	"sync"
)

type requestTraceKey struct{}

// RequestTrace identifies one HTTP request and collects the fields its
// access log line carries. Handlers add to it with Annotate.
type RequestTrace struct {
	TraceID   string
	RequestID string

	mu     sync.Mutex
	fields []interface{}
}

func WithRequestTrace(ctx context.Context, rt *RequestTrace) context.Context {
	return context.WithValue(ctx, requestTraceKey{}, rt)
}

func GetRequestTrace(ctx context.Context) *RequestTrace {
	if ctx == nil {
		return nil
	}
	if rt, ok := ctx.Value(requestTraceKey{}).(*RequestTrace); ok {
		return rt
	}
	return nil
}

// Annotate appends key/value pairs to the request's access log line. It is
// a no-op when ctx carries no trace.
func Annotate(ctx context.Context, keysAndValues ...interface{}) {
	rt := GetRequestTrace(ctx)
	if rt == nil || len(keysAndValues) == 0 {
		return
	}
	rt.mu.Lock()
	rt.fields = append(rt.fields, keysAndValues...)
	rt.mu.Unlock()
}

// Fields returns the ids followed by every annotation, in order.
func (rt *RequestTrace) Fields() []interface{} {
	if rt == nil {
		return nil
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	out := make([]interface{}, 0, len(rt.fields)+4)
	if rt.TraceID != "" {
		out = append(out, "trace_id", rt.TraceID)
	}
	if rt.RequestID != "" {
		out = append(out, "request_id", rt.RequestID)
	}
	return append(out, rt.fields...)
}
