package rpc

import (
	"context"

	"google.golang.org/grpc"

	"gfx.cafe/gfx/guild/lib/guild/protocol"
)

const (
	Receptionist_Active_FullMethodName  = "/guild.Receptionist/Active"
	Receptionist_Request_FullMethodName = "/guild.Receptionist/Request"
)

type ReceptionistServer interface {
	Active(context.Context, *protocol.Empty) (*protocol.Acknowledgement, error)
	Request(grpc.BidiStreamingServer[protocol.RequestDetails, protocol.RequestAcknowledgement]) error
}

func RegisterReceptionistServer(s grpc.ServiceRegistrar, srv ReceptionistServer) {
	s.RegisterService(&Receptionist_ServiceDesc, srv)
}

func _Receptionist_Active_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(protocol.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReceptionistServer).Active(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Receptionist_Active_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReceptionistServer).Active(ctx, req.(*protocol.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _Receptionist_Request_Handler(srv any, stream grpc.ServerStream) error {
	return srv.(ReceptionistServer).Request(&grpc.GenericServerStream[protocol.RequestDetails, protocol.RequestAcknowledgement]{ServerStream: stream})
}

var Receptionist_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "guild.Receptionist",
	HandlerType: (*ReceptionistServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Active",
			Handler:    _Receptionist_Active_Handler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Request",
			Handler:       _Receptionist_Request_Handler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "guild/receptionist",
}

type ReceptionistClient struct {
	cc grpc.ClientConnInterface
}

func NewReceptionistClient(cc grpc.ClientConnInterface) *ReceptionistClient {
	return &ReceptionistClient{cc: cc}
}

func (T *ReceptionistClient) Active(ctx context.Context, opts ...grpc.CallOption) (*protocol.Acknowledgement, error) {
	out := new(protocol.Acknowledgement)
	if err := T.cc.Invoke(ctx, Receptionist_Active_FullMethodName, new(protocol.Empty), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (T *ReceptionistClient) Request(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[protocol.RequestDetails, protocol.RequestAcknowledgement], error) {
	stream, err := T.cc.NewStream(ctx, &Receptionist_ServiceDesc.Streams[0], Receptionist_Request_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[protocol.RequestDetails, protocol.RequestAcknowledgement]{ClientStream: stream}, nil
}
