// Package grpc exposes the slug service as slugshare.v1.SlugService. The
// service is registered from a hand-written descriptor over protobuf
// well-known types, so no generated code is needed on either side.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/atinyakov/slugshare/internal/app/service"
	"github.com/atinyakov/slugshare/internal/intercepters"
	"github.com/atinyakov/slugshare/internal/middleware"
	"github.com/atinyakov/slugshare/internal/storage"
)

const ServiceName = "slugshare.v1.SlugService"

// Full method names.
const (
	MethodCheckSlug   = "/" + ServiceName + "/CheckSlug"
	MethodListSlugs   = "/" + ServiceName + "/ListSlugs"
	MethodCreateSlug  = "/" + ServiceName + "/CreateSlug"
	MethodRenameSlug  = "/" + ServiceName + "/RenameSlug"
	MethodDeleteSlug  = "/" + ServiceName + "/DeleteSlug"
	MethodResolveSlug = "/" + ServiceName + "/ResolveSlug"
	MethodGetStats    = "/" + ServiceName + "/GetStats"
)

// SlugServiceServer is the server side of slugshare.v1.SlugService.
type SlugServiceServer interface {
	CheckSlug(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	ListSlugs(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	CreateSlug(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	RenameSlug(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	DeleteSlug(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
	ResolveSlug(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
	GetStats(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
}

func unary[Req any](name string, newReq func() Req, call func(SlugServiceServer, context.Context, Req) (any, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name

	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SlugServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(SlugServiceServer), ctx, req.(Req))
			})
		},
	}
}

func newStruct() *structpb.Struct              { return &structpb.Struct{} }
func newEmpty() *emptypb.Empty                 { return &emptypb.Empty{} }
func newStringValue() *wrapperspb.StringValue { return &wrapperspb.StringValue{} }

// SlugServiceDesc describes slugshare.v1.SlugService for grpc.RegisterService.
var SlugServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SlugServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CheckSlug", newStruct, func(s SlugServiceServer, ctx context.Context, in *structpb.Struct) (any, error) {
			return s.CheckSlug(ctx, in)
		}),
		unary("ListSlugs", newEmpty, func(s SlugServiceServer, ctx context.Context, in *emptypb.Empty) (any, error) {
			return s.ListSlugs(ctx, in)
		}),
		unary("CreateSlug", newStruct, func(s SlugServiceServer, ctx context.Context, in *structpb.Struct) (any, error) {
			return s.CreateSlug(ctx, in)
		}),
		unary("RenameSlug", newStruct, func(s SlugServiceServer, ctx context.Context, in *structpb.Struct) (any, error) {
			return s.RenameSlug(ctx, in)
		}),
		unary("DeleteSlug", newStringValue, func(s SlugServiceServer, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
			return s.DeleteSlug(ctx, in)
		}),
		unary("ResolveSlug", newStringValue, func(s SlugServiceServer, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
			return s.ResolveSlug(ctx, in)
		}),
		unary("GetStats", newEmpty, func(s SlugServiceServer, ctx context.Context, in *emptypb.Empty) (any, error) {
			return s.GetStats(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "slugshare/v1/slug_service.proto",
}

// Server wraps the gRPC server and dependencies.
type Server struct {
	grpcServer *grpc.Server
	port       int
	logger     *zap.Logger
}

// New creates a new gRPC server instance. ResolveSlug is public, GetStats is
// limited to trustedSubnet, everything else needs a bearer token.
func New(svc service.SlugServiceIface, auth service.AuthIface, trustedSubnet string, logger *zap.Logger, port int) *Server {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			intercepters.WithLogging(logger),
			intercepters.WithTrustedSubnet(trustedSubnet, logger, MethodGetStats),
			intercepters.WithJWT(auth, MethodResolveSlug, MethodGetStats),
		),
	)

	s.RegisterService(&SlugServiceDesc, &SlugServer{Service: svc, Logger: logger})

	return &Server{
		grpcServer: s,
		port:       port,
		logger:     logger,
	}
}

// Start listens on the configured port and serves until stopped.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		s.logger.Error("gRPC server failed to listen", zap.Error(err))
		return err
	}

	s.logger.Info("gRPC server listening on port", zap.Int("port", s.port))
	return s.Serve(lis)
}

func (s *Server) Serve(lis net.Listener) error {
	err := s.grpcServer.Serve(lis)
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

// GracefulStop shuts down the server gracefully.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

// --- Implementation of the gRPC interface ---

// SlugServer maps slugshare.v1.SlugService calls onto the slug service.
type SlugServer struct {
	Service service.SlugServiceIface
	Logger  *zap.Logger
}

var kindCode = map[service.Kind]codes.Code{
	service.KindValidation:   codes.InvalidArgument,
	service.KindUnauthorized: codes.Unauthenticated,
	service.KindForbidden:    codes.PermissionDenied,
	service.KindNotFound:     codes.NotFound,
	service.KindConflict:     codes.AlreadyExists,
	service.KindDependency:   codes.Unavailable,
}

func toStatus(err error) error {
	var se *service.Error
	if !errors.As(err, &se) {
		return status.Error(codes.Internal, "Internal server error")
	}

	code, ok := kindCode[se.Kind]
	if !ok {
		code = codes.Internal
	}
	return status.Error(code, se.Msg)
}

// stringFields reads the request schema of one method: every key is an
// optional string. Unknown keys and values of another type are rejected.
func stringFields(in *structpb.Struct, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for name, v := range in.GetFields() {
		if !slices.Contains(keys, name) {
			return nil, status.Errorf(codes.InvalidArgument, "unknown field %q", name)
		}
		switch k := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			out[name] = k.StringValue
		case *structpb.Value_NullValue:
		default:
			return nil, status.Errorf(codes.InvalidArgument, "field %q must be a string", name)
		}
	}
	return out, nil
}

func userID(ctx context.Context) (string, error) {
	id := middleware.UserID(ctx)
	if id == "" {
		return "", status.Error(codes.Unauthenticated, "Unauthorized")
	}
	return id, nil
}

func recordMap(r storage.SlugRecord) map[string]any {
	return map[string]any{
		"id":        r.ID,
		"slug":      r.Slug,
		"fileUrl":   r.FileURL,
		"createdAt": r.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updatedAt": r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (s *SlugServer) reply(v map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(v)
	if err != nil {
		s.Logger.Error("cannot encode response", zap.Error(err))
		return nil, status.Error(codes.Internal, "Internal server error")
	}
	return out, nil
}

func (s *SlugServer) CheckSlug(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f, err := stringFields(in, "slug", "exclude")
	if err != nil {
		return nil, err
	}

	res, err := s.Service.CheckAvailability(ctx, f["slug"], f["exclude"])
	if err != nil {
		return nil, toStatus(err)
	}

	out := map[string]any{"available": res.Available, "slug": res.Slug}
	if res.Error != "" {
		out["error"] = res.Error
	}
	return s.reply(out)
}

func (s *SlugServer) ListSlugs(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	user, err := userID(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.Service.ListSlugs(ctx, user)
	if err != nil {
		return nil, toStatus(err)
	}

	items := make([]any, 0, len(records))
	for _, r := range records {
		items = append(items, recordMap(r))
	}
	return s.reply(map[string]any{"slugs": items})
}

func (s *SlugServer) CreateSlug(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	user, err := userID(ctx)
	if err != nil {
		return nil, err
	}

	f, err := stringFields(in, "slug", "fileUrl")
	if err != nil {
		return nil, err
	}

	r, err := s.Service.CreateSlug(ctx, user, f["slug"], f["fileUrl"])
	if err != nil {
		return nil, toStatus(err)
	}
	return s.reply(recordMap(*r))
}

func (s *SlugServer) RenameSlug(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	user, err := userID(ctx)
	if err != nil {
		return nil, err
	}

	f, err := stringFields(in, "id", "slug")
	if err != nil {
		return nil, err
	}

	r, err := s.Service.RenameSlug(ctx, user, f["id"], f["slug"])
	if err != nil {
		return nil, toStatus(err)
	}
	return s.reply(recordMap(*r))
}

func (s *SlugServer) DeleteSlug(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	user, err := userID(ctx)
	if err != nil {
		return nil, err
	}

	r, err := s.Service.DeleteSlug(ctx, user, in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return s.reply(map[string]any{"message": fmt.Sprintf("Slug %q deleted successfully", r.Slug)})
}

func (s *SlugServer) ResolveSlug(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	r, err := s.Service.Resolve(ctx, in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return s.reply(recordMap(*r))
}

func (s *SlugServer) GetStats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	stats, err := s.Service.GetStats(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return s.reply(map[string]any{"slugs": stats.Slugs, "users": stats.Users})
}
