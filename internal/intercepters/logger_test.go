package intercepters_test

import (
	"context"
	"testing"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/atinyakov/slugshare/internal/intercepters"
)

func TestWithLogging_FinishedCall(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantLvl zapcore.Level
		code    string
	}{
		{name: "created", err: nil, wantLvl: zap.InfoLevel, code: "OK"},
		{name: "slug taken", err: status.Error(codes.AlreadyExists, "taken"), wantLvl: zap.InfoLevel, code: "AlreadyExists"},
		{name: "not owner", err: status.Error(codes.PermissionDenied, "forbidden"), wantLvl: zap.WarnLevel, code: "PermissionDenied"},
		{name: "registry down", err: status.Error(codes.Unavailable, "down"), wantLvl: zap.ErrorLevel, code: "Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			interceptor := intercepters.WithLogging(zap.New(core))

			info := &grpc.UnaryServerInfo{FullMethod: "/slugshare.v1.SlugService/CreateSlug"}
			_, err := interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
				return nil, tt.err
			})
			assert.Equal(t, tt.err, err)

			entries := logs.FilterMessage("finished call").All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantLvl, entries[0].Level)

			fields := entries[0].ContextMap()
			assert.Equal(t, "slugshare.v1.SlugService", fields["grpc.service"])
			assert.Equal(t, "CreateSlug", fields["grpc.method"])
			assert.Equal(t, tt.code, fields["grpc.code"])
		})
	}
}

func TestInterceptorLogger_Fields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := intercepters.InterceptorLogger(zap.New(core))

	l.Log(context.Background(), logging.LevelDebug, "call", "slug", "q3-report", "attempt", 2, "public", true, "odd")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "q3-report", fields["slug"])
	assert.EqualValues(t, 2, fields["attempt"])
	assert.Equal(t, true, fields["public"])
	assert.NotContains(t, fields, "odd")
}

func TestInterceptorLogger_UnknownLevel(t *testing.T) {
	l := intercepters.InterceptorLogger(zap.NewNop())

	assert.Panics(t, func() {
		l.Log(context.Background(), logging.Level(999), "call")
	})
}
