package server

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	mdwerror "github.com/msto63/bayan/foundation/core/error"
)

// ServiceName is the fully qualified name of the run service
const ServiceName = "bayan.v1.Runner"

const runMethod = "/" + ServiceName + "/Run"

// RunnerServer is the server API of the run service. Requests and
// responses travel as google.protobuf.Struct so the service needs no
// generated code.
type RunnerServer interface {
	Run(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RunnerServiceDesc describes the run service for grpc.Server
var RunnerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RunnerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Run", Handler: runHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bayan/v1/runner.proto",
}

// RegisterRunnerServer registers srv on s
func RegisterRunnerServer(s grpc.ServiceRegistrar, srv RunnerServer) {
	s.RegisterService(&RunnerServiceDesc, srv)
}

func runHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RunnerServer).Run(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: runMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RunnerServer).Run(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// grpcRunner adapts Runner to RunnerServer
type grpcRunner struct {
	runner *Runner
}

func (g *grpcRunner) Run(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req RunRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	resp, err := g.runner.Run(ctx, &req)
	if err != nil {
		return nil, err
	}
	return toStruct(resp)
}

// RunnerClient calls the run service over a client connection
type RunnerClient struct {
	conn grpc.ClientConnInterface
}

// NewRunnerClient creates a client for conn
func NewRunnerClient(conn grpc.ClientConnInterface) *RunnerClient {
	return &RunnerClient{conn: conn}
}

// Run submits req and decodes the response
func (c *RunnerClient) Run(ctx context.Context, req *RunRequest, opts ...grpc.CallOption) (*RunResponse, error) {
	in, err := toStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, runMethod, in, out, opts...); err != nil {
		return nil, err
	}
	var resp RunResponse
	if err := fromStruct(out, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// toStruct and fromStruct convert through JSON so the json tags of the
// request and response types define the wire field names
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to encode message").WithCode(mdwerror.CodeInternal)
	}
	s := new(structpb.Struct)
	if err := s.UnmarshalJSON(data); err != nil {
		return nil, mdwerror.Wrap(err, "failed to encode message").WithCode(mdwerror.CodeInternal)
	}
	return s, nil
}

func fromStruct(s *structpb.Struct, v interface{}) error {
	data, err := s.MarshalJSON()
	if err != nil {
		return mdwerror.Wrap(err, "failed to decode message").WithCode(mdwerror.CodeInvalidInput)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return mdwerror.Wrap(err, "failed to decode message").WithCode(mdwerror.CodeInvalidInput)
	}
	return nil
}
