package rpc

import (
	"context"

	"google.golang.org/grpc"

	"gfx.cafe/gfx/guild/lib/guild/protocol"
)

const (
	Guild_Register_FullMethodName   = "/guild.Guild/Register"
	Guild_Deregister_FullMethodName = "/guild.Guild/Deregister"
	Guild_Release_FullMethodName    = "/guild.Guild/Release"
	Guild_Roster_FullMethodName     = "/guild.Guild/Roster"
	Guild_Board_FullMethodName      = "/guild.Guild/Board"
	Guild_Quests_FullMethodName     = "/guild.Guild/Quests"
)

// GuildServer is the worker facing side: mercenaries join and leave, report finished quests,
// watch the quest board, and follow the quests handed to them.
type GuildServer interface {
	Register(context.Context, *protocol.Recruit) (*protocol.Acknowledgement, error)
	Deregister(context.Context, *protocol.Dismissal) (*protocol.Acknowledgement, error)
	Release(context.Context, *protocol.Dismissal) (*protocol.Acknowledgement, error)
	Roster(*protocol.Empty, grpc.ServerStreamingServer[protocol.MercenaryStatus]) error
	Board(*protocol.Empty, grpc.ServerStreamingServer[protocol.GuildQuestAcknowledgement]) error
	Quests(*protocol.FollowRequest, grpc.ServerStreamingServer[protocol.GuildQuest]) error
}

func RegisterGuildServer(s grpc.ServiceRegistrar, srv GuildServer) {
	s.RegisterService(&Guild_ServiceDesc, srv)
}

func unaryHandler[Req any](method string, call func(GuildServer, context.Context, *Req) (*protocol.Acknowledgement, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(GuildServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(GuildServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _Guild_Roster_Handler(srv any, stream grpc.ServerStream) error {
	m := new(protocol.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(GuildServer).Roster(m, &grpc.GenericServerStream[protocol.Empty, protocol.MercenaryStatus]{ServerStream: stream})
}

func _Guild_Board_Handler(srv any, stream grpc.ServerStream) error {
	m := new(protocol.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(GuildServer).Board(m, &grpc.GenericServerStream[protocol.Empty, protocol.GuildQuestAcknowledgement]{ServerStream: stream})
}

func _Guild_Quests_Handler(srv any, stream grpc.ServerStream) error {
	m := new(protocol.FollowRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(GuildServer).Quests(m, &grpc.GenericServerStream[protocol.FollowRequest, protocol.GuildQuest]{ServerStream: stream})
}

var Guild_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "guild.Guild",
	HandlerType: (*GuildServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Register",
			Handler:    unaryHandler(Guild_Register_FullMethodName, GuildServer.Register),
		},
		{
			MethodName: "Deregister",
			Handler:    unaryHandler(Guild_Deregister_FullMethodName, GuildServer.Deregister),
		},
		{
			MethodName: "Release",
			Handler:    unaryHandler(Guild_Release_FullMethodName, GuildServer.Release),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Roster",
			Handler:       _Guild_Roster_Handler,
			ServerStreams: true,
		},
		{
			StreamName:    "Board",
			Handler:       _Guild_Board_Handler,
			ServerStreams: true,
		},
		{
			StreamName:    "Quests",
			Handler:       _Guild_Quests_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "guild/guild",
}

type GuildClient struct {
	cc grpc.ClientConnInterface
}

func NewGuildClient(cc grpc.ClientConnInterface) *GuildClient {
	return &GuildClient{cc: cc}
}

func (T *GuildClient) unary(ctx context.Context, method string, in any, opts ...grpc.CallOption) (*protocol.Acknowledgement, error) {
	out := new(protocol.Acknowledgement)
	if err := T.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (T *GuildClient) Register(ctx context.Context, in *protocol.Recruit, opts ...grpc.CallOption) (*protocol.Acknowledgement, error) {
	return T.unary(ctx, Guild_Register_FullMethodName, in, opts...)
}

func (T *GuildClient) Deregister(ctx context.Context, in *protocol.Dismissal, opts ...grpc.CallOption) (*protocol.Acknowledgement, error) {
	return T.unary(ctx, Guild_Deregister_FullMethodName, in, opts...)
}

func (T *GuildClient) Release(ctx context.Context, in *protocol.Dismissal, opts ...grpc.CallOption) (*protocol.Acknowledgement, error) {
	return T.unary(ctx, Guild_Release_FullMethodName, in, opts...)
}

func serverStream[Req, Res any](ctx context.Context, cc grpc.ClientConnInterface, desc *grpc.StreamDesc, method string, in *Req, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Res], error) {
	stream, err := cc.NewStream(ctx, desc, method, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[Req, Res]{ClientStream: stream}
	if err = x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err = x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (T *GuildClient) Roster(ctx context.Context, opts ...grpc.CallOption) (grpc.ServerStreamingClient[protocol.MercenaryStatus], error) {
	return serverStream[protocol.Empty, protocol.MercenaryStatus](ctx, T.cc, &Guild_ServiceDesc.Streams[0], Guild_Roster_FullMethodName, new(protocol.Empty), opts...)
}

func (T *GuildClient) Board(ctx context.Context, opts ...grpc.CallOption) (grpc.ServerStreamingClient[protocol.GuildQuestAcknowledgement], error) {
	return serverStream[protocol.Empty, protocol.GuildQuestAcknowledgement](ctx, T.cc, &Guild_ServiceDesc.Streams[1], Guild_Board_FullMethodName, new(protocol.Empty), opts...)
}

func (T *GuildClient) Quests(ctx context.Context, in *protocol.FollowRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[protocol.GuildQuest], error) {
	return serverStream[protocol.FollowRequest, protocol.GuildQuest](ctx, T.cc, &Guild_ServiceDesc.Streams[2], Guild_Quests_FullMethodName, in, opts...)
}
