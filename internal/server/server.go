// Package server exposes the compiler as the gRPC service asc.Compiler.
//
// Messages are google.protobuf.Struct values, so no generated code is
// needed on either side:
//
//	request  {source: string, path?: string}
//	response {build_id: string, cached: bool, ir: {...}}
//
// where ir is the tagged-union form produced by ir.ToStruct.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/funvibe/asc/internal/backend"
	"github.com/funvibe/asc/internal/cache"
	"github.com/funvibe/asc/internal/ir"
)

const (
	ServiceName   = "asc.Compiler"
	compileMethod = "/" + ServiceName + "/Compile"
)

// Request and response field names.
const (
	FieldSource  = "source"
	FieldPath    = "path"
	FieldBuildID = "build_id"
	FieldCached  = "cached"
	FieldIR      = "ir"
)

// CompilerServer is implemented by Service.
type CompilerServer interface {
	Compile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// Service compiles each request with its own pipeline, so requests never
// share scope state.
type Service struct {
	// Builtins are extra root-scope names, as in asc.yaml.
	Builtins []string
	// Cache is consulted before compiling when set.
	Cache  *cache.Cache
	Logger *log.Logger
}

func (s *Service) logf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

func (s *Service) Compile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	source, ok := req.GetFields()[FieldSource]
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "missing %q field", FieldSource)
	}
	if _, isString := source.GetKind().(*structpb.Value_StringValue); !isString {
		return nil, status.Errorf(codes.InvalidArgument, "%q must be a string", FieldSource)
	}
	path := req.GetFields()[FieldPath].GetStringValue()
	text := source.GetStringValue()

	if s.Cache != nil {
		entry, hit, err := s.Cache.Get(ctx, text, s.Builtins)
		if err != nil {
			s.logf("cache lookup failed: %v", err)
		} else if hit {
			s.logf("compile %s: cached build %s", displayPath(path), entry.BuildID)
			return response(entry.BuildID, true, entry.IR)
		}
	}

	result := backend.Run(nil, path, text, s.Builtins)
	if result.Failed() {
		msgs := make([]string, len(result.Errors))
		for i, e := range result.Errors {
			msgs[i] = e.Error()
		}
		s.logf("compile %s: %d error(s)", displayPath(path), len(msgs))
		return nil, status.Error(codes.InvalidArgument, strings.Join(msgs, "\n"))
	}

	buildID := uuid.NewString()
	if s.Cache != nil {
		entry, err := s.Cache.Put(ctx, text, s.Builtins, result.IR)
		if err != nil {
			s.logf("cache store failed: %v", err)
		} else {
			buildID = entry.BuildID
		}
	}
	s.logf("compile %s: %d definitions, build %s", displayPath(path), len(result.IR), buildID)
	return response(buildID, false, result.IR)
}

func displayPath(path string) string {
	if path == "" {
		return "<request>"
	}
	return path
}

func response(buildID string, cached bool, defs ir.Defs) (*structpb.Struct, error) {
	irStruct, err := ir.ToStruct(defs)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding ir: %v", err)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldBuildID: structpb.NewStringValue(buildID),
		FieldCached:  structpb.NewBoolValue(cached),
		FieldIR:      structpb.NewStructValue(irStruct),
	}}, nil
}

func compileHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CompilerServer).Compile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: compileMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CompilerServer).Compile(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CompilerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Compile", Handler: compileHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "asc/compiler",
}

// Register adds impl to s.
func Register(s *grpc.Server, impl CompilerServer) {
	s.RegisterService(&serviceDesc, impl)
}

// Serve listens on addr until ctx is cancelled, then stops gracefully.
func Serve(ctx context.Context, addr string, impl *Service) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return ServeListener(ctx, lis, impl)
}

// ServeListener is Serve on an existing listener.
func ServeListener(ctx context.Context, lis net.Listener, impl *Service) error {
	srv := grpc.NewServer()
	Register(srv, impl)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			srv.GracefulStop()
		case <-done:
		}
	}()

	impl.logf("asc %s listening on %s", ServiceName, lis.Addr())
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Result is a decoded Compile response.
type Result struct {
	BuildID string
	Cached  bool
	IR      ir.Defs
}

// Compile calls the service over conn.
func Compile(ctx context.Context, conn grpc.ClientConnInterface, path, source string) (*Result, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldSource: structpb.NewStringValue(source),
	}}
	if path != "" {
		req.Fields[FieldPath] = structpb.NewStringValue(path)
	}

	resp := new(structpb.Struct)
	if err := conn.Invoke(ctx, compileMethod, req, resp); err != nil {
		return nil, err
	}

	fields := resp.GetFields()
	irStruct := fields[FieldIR].GetStructValue()
	if irStruct == nil {
		return nil, fmt.Errorf("response has no %q field", FieldIR)
	}
	defs, err := ir.FromStruct(irStruct)
	if err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &Result{
		BuildID: fields[FieldBuildID].GetStringValue(),
		Cached:  fields[FieldCached].GetBoolValue(),
		IR:      defs,
	}, nil
}
