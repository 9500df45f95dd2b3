package rpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"gfx.cafe/gfx/guild/lib/guild/board"
	"gfx.cafe/gfx/guild/lib/guild/matcher"
	"gfx.cafe/gfx/guild/lib/guild/protocol"
	"gfx.cafe/gfx/guild/lib/receptionist"
)

type ReceptionistService struct {
	Receptionist *receptionist.Receptionist
}

func (T *ReceptionistService) Active(_ context.Context, _ *protocol.Empty) (*protocol.Acknowledgement, error) {
	return &protocol.Acknowledgement{
		Ok: T.Receptionist.Active(),
	}, nil
}

func (T *ReceptionistService) Request(stream grpc.BidiStreamingServer[protocol.RequestDetails, protocol.RequestAcknowledgement]) error {
	return toStatus(T.Receptionist.Serve(stream.Context(), "grpc", stream))
}

type GuildService struct {
	Guild    *matcher.Guild
	Bulletin *board.Board
}

func (T *GuildService) Register(_ context.Context, in *protocol.Recruit) (*protocol.Acknowledgement, error) {
	if err := in.Offer.Validate(); err != nil {
		return nil, toStatus(err)
	}
	if err := T.Guild.Register(in.Identifier, in.Offer); err != nil {
		return nil, toStatus(err)
	}
	return &protocol.Acknowledgement{Ok: true}, nil
}

func (T *GuildService) Deregister(_ context.Context, in *protocol.Dismissal) (*protocol.Acknowledgement, error) {
	if err := T.Guild.Deregister(in.Identifier); err != nil {
		return nil, toStatus(err)
	}
	return &protocol.Acknowledgement{Ok: true}, nil
}

func (T *GuildService) Release(_ context.Context, in *protocol.Dismissal) (*protocol.Acknowledgement, error) {
	if err := T.Guild.Release(in.Identifier); err != nil {
		return nil, toStatus(err)
	}
	return &protocol.Acknowledgement{Ok: true}, nil
}

func (T *GuildService) Roster(_ *protocol.Empty, stream grpc.ServerStreamingServer[protocol.MercenaryStatus]) error {
	for _, m := range T.Guild.Roster() {
		err := stream.Send(&protocol.MercenaryStatus{
			Identifier: m.ID,
			Offer:      m.Offer,
			Busy:       m.ClaimedBy != "",
			Quest:      m.ClaimedBy,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (T *GuildService) Board(_ *protocol.Empty, stream grpc.ServerStreamingServer[protocol.GuildQuestAcknowledgement]) error {
	sub := T.Bulletin.Subscribe()
	defer sub.Close()

	// lets clients know they will not miss anything announced from here on
	if err := stream.SendHeader(metadata.Pairs("board", "subscribed")); err != nil {
		return err
	}

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return toStatus(ctx.Err())
		case ack, ok := <-sub.C():
			if !ok {
				return nil
			}
			if err := stream.Send(&ack); err != nil {
				return err
			}
		}
	}
}

// Quests streams every quest assigned to one mercenary, including reassignments after a
// requeue, until the client goes away.
func (T *GuildService) Quests(in *protocol.FollowRequest, stream grpc.ServerStreamingServer[protocol.GuildQuest]) error {
	if in.Mercenary == "" {
		return status.Error(codes.InvalidArgument, "mercenary is required")
	}

	orders := T.Bulletin.Follow(in.Mercenary)
	defer orders.Close()

	if err := stream.SendHeader(metadata.Pairs("board", "following")); err != nil {
		return err
	}

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return toStatus(ctx.Err())
		case quest, ok := <-orders.C():
			if !ok {
				return nil
			}
			if err := stream.Send(&quest); err != nil {
				return err
			}
		}
	}
}

var (
	_ ReceptionistServer = (*ReceptionistService)(nil)
	_ GuildServer        = (*GuildService)(nil)
)

// NewServer creates a grpc server carrying both services.
func NewServer(r *receptionist.Receptionist, g *matcher.Guild, b *board.Board, logger *zap.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(UnaryLogger(logger)))
	s := grpc.NewServer(opts...)
	RegisterReceptionistServer(s, &ReceptionistService{Receptionist: r})
	RegisterGuildServer(s, &GuildService{Guild: g, Bulletin: b})
	return s
}

func UnaryLogger(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug(
			"rpc",
			zap.String("method", info.FullMethod),
			zap.Stringer("code", status.Code(err)),
			zap.Duration("took", time.Since(start)),
		)
		return resp, err
	}
}
