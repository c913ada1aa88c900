// Package intercepters holds the unary interceptors of the gRPC transport.
package intercepters

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/atinyakov/slugshare/internal/app/service"
	"github.com/atinyakov/slugshare/internal/middleware"
)

// WithJWT requires a bearer token in the "authorization" metadata and puts
// the caller into the context under middleware.UserIDKey. Methods listed in
// public are served without a token.
func WithJWT(auth service.AuthIface, public ...string) grpc.UnaryServerInterceptor {
	open := make(map[string]struct{}, len(public))
	for _, m := range public {
		open[m] = struct{}{}
	}

	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if _, ok := open[info.FullMethod]; ok {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		var raw string
		if values := md.Get("authorization"); len(values) > 0 {
			raw = middleware.BearerToken(values[0])
		}
		if raw == "" {
			return nil, status.Error(codes.Unauthenticated, "Unauthorized")
		}

		claims, err := auth.ParseRawJWT(raw)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "Invalid or expired token")
		}

		ctx = context.WithValue(ctx, middleware.UserIDKey, claims.Owner())
		return handler(ctx, req)
	}
}
