package application

import "context"

type routeKey struct{}

type route struct{ method, path string }

// WithRoute anota o ctx com método/rota HTTP para as estatísticas do limiter.
func WithRoute(ctx context.Context, method, path string) context.Context {
	return context.WithValue(ctx, routeKey{}, route{method: method, path: path})
}

func methodFrom(ctx context.Context) string {
	if r, ok := ctx.Value(routeKey{}).(route); ok {
		return r.method
	}
	return ""
}

func pathFrom(ctx context.Context) string {
	if r, ok := ctx.Value(routeKey{}).(route); ok {
		return r.path
	}
	return ""
}
