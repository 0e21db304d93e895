package protoc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	TrackingPipelineServiceName = "tracking.TrackingPipeline"

	TrackingPipeline_SendDetections_FullMethodName = "/tracking.TrackingPipeline/SendDetections"
	TrackingPipeline_ResetSource_FullMethodName    = "/tracking.TrackingPipeline/ResetSource"
)

// TrackingPipelineClient is the client API for the TrackingPipeline service.
type TrackingPipelineClient interface {
	SendDetections(ctx context.Context, in *DetectionFrame, opts ...grpc.CallOption) (*TrackFrame, error)
	ResetSource(ctx context.Context, in *SourceRequest, opts ...grpc.CallOption) (*Ack, error)
}

type trackingPipelineClient struct {
	cc grpc.ClientConnInterface
}

func NewTrackingPipelineClient(cc grpc.ClientConnInterface) TrackingPipelineClient {
	return &trackingPipelineClient{cc}
}

func (c *trackingPipelineClient) SendDetections(ctx context.Context, in *DetectionFrame, opts ...grpc.CallOption) (*TrackFrame, error) {
	out := new(TrackFrame)
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	if err := c.cc.Invoke(ctx, TrackingPipeline_SendDetections_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *trackingPipelineClient) ResetSource(ctx context.Context, in *SourceRequest, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	if err := c.cc.Invoke(ctx, TrackingPipeline_ResetSource_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// TrackingPipelineServer is the server API for the TrackingPipeline service.
type TrackingPipelineServer interface {
	SendDetections(context.Context, *DetectionFrame) (*TrackFrame, error)
	ResetSource(context.Context, *SourceRequest) (*Ack, error)
	mustEmbedUnimplementedTrackingPipelineServer()
}

// UnimplementedTrackingPipelineServer must be embedded for forward compatibility.
type UnimplementedTrackingPipelineServer struct{}

func (UnimplementedTrackingPipelineServer) SendDetections(context.Context, *DetectionFrame) (*TrackFrame, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SendDetections not implemented")
}
func (UnimplementedTrackingPipelineServer) ResetSource(context.Context, *SourceRequest) (*Ack, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ResetSource not implemented")
}
func (UnimplementedTrackingPipelineServer) mustEmbedUnimplementedTrackingPipelineServer() {}

func RegisterTrackingPipelineServer(s grpc.ServiceRegistrar, srv TrackingPipelineServer) {
	s.RegisterService(&TrackingPipeline_ServiceDesc, srv)
}

func _TrackingPipeline_SendDetections_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DetectionFrame)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TrackingPipelineServer).SendDetections(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: TrackingPipeline_SendDetections_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TrackingPipelineServer).SendDetections(ctx, req.(*DetectionFrame))
	}
	return interceptor(ctx, in, info, handler)
}

func _TrackingPipeline_ResetSource_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SourceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TrackingPipelineServer).ResetSource(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: TrackingPipeline_ResetSource_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TrackingPipelineServer).ResetSource(ctx, req.(*SourceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// TrackingPipeline_ServiceDesc is the grpc.ServiceDesc for the TrackingPipeline service.
var TrackingPipeline_ServiceDesc = grpc.ServiceDesc{
	ServiceName: TrackingPipelineServiceName,
	HandlerType: (*TrackingPipelineServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SendDetections",
			Handler:    _TrackingPipeline_SendDetections_Handler,
		},
		{
			MethodName: "ResetSource",
			Handler:    _TrackingPipeline_ResetSource_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tracking.proto",
}
