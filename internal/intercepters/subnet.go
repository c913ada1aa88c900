package intercepters

import (
	"context"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// WithTrustedSubnet guards the given methods: the "x-real-ip" metadata must
// lie inside subnet. An empty or unparsable subnet denies them all.
func WithTrustedSubnet(subnet string, logger *zap.Logger, guarded ...string) grpc.UnaryServerInterceptor {
	var trusted *net.IPNet
	if subnet != "" {
		_, ipNet, err := net.ParseCIDR(subnet)
		if err != nil {
			logger.Error("invalid trusted subnet, internal methods are closed", zap.String("subnet", subnet), zap.Error(err))
		} else {
			trusted = ipNet
		}
	}

	closed := make(map[string]struct{}, len(guarded))
	for _, m := range guarded {
		closed[m] = struct{}{}
	}

	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if _, ok := closed[info.FullMethod]; !ok {
			return handler(ctx, req)
		}

		var ip net.IP
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ips := md.Get("x-real-ip"); len(ips) > 0 {
				ip = net.ParseIP(ips[0])
			}
		}

		if trusted == nil || ip == nil || !trusted.Contains(ip) {
			return nil, status.Error(codes.PermissionDenied, "Forbidden")
		}
		return handler(ctx, req)
	}
}
