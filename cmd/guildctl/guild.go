package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gfx.cafe/gfx/guild/lib/guild/protocol"
	"gfx.cafe/gfx/guild/lib/guild/rpc"
	"gfx.cafe/gfx/guild/lib/util/table"
)

func withGuild(fn func(ctx context.Context, cmd *cobra.Command, guild *rpc.GuildClient, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		conn, err := dial()
		if err != nil {
			return err
		}
		defer func() {
			_ = conn.Close()
		}()
		return fn(cmd.Context(), cmd, rpc.NewGuildClient(conn), args)
	}
}

func follow[T any](cmd *cobra.Command, stream grpc.ServerStreamingClient[T]) error {
	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
			return nil
		}
		if err != nil {
			return err
		}
		if err = printJSON(cmd, msg); err != nil {
			return err
		}
	}
}

func init() {
	var offer descriptorFlags
	recruit := &cobra.Command{
		Use:   "recruit <id>",
		Short: "register a free mercenary",
		Args:  cobra.ExactArgs(1),
		RunE: withGuild(func(ctx context.Context, cmd *cobra.Command, guild *rpc.GuildClient, args []string) error {
			d, err := offer.descriptor()
			if err != nil {
				return err
			}
			ack, err := guild.Register(ctx, &protocol.Recruit{Identifier: args[0], Offer: d})
			if err != nil {
				return err
			}
			return printJSON(cmd, ack)
		}),
	}
	offer.register(recruit.Flags())

	dismiss := &cobra.Command{
		Use:   "dismiss <id>",
		Short: "deregister a mercenary, sending its quest back to the queue",
		Args:  cobra.ExactArgs(1),
		RunE: withGuild(func(ctx context.Context, cmd *cobra.Command, guild *rpc.GuildClient, args []string) error {
			ack, err := guild.Deregister(ctx, &protocol.Dismissal{Identifier: args[0]})
			if err != nil {
				return err
			}
			return printJSON(cmd, ack)
		}),
	}

	release := &cobra.Command{
		Use:   "release <id>",
		Short: "mark a mercenary's quest complete and free it",
		Args:  cobra.ExactArgs(1),
		RunE: withGuild(func(ctx context.Context, cmd *cobra.Command, guild *rpc.GuildClient, args []string) error {
			ack, err := guild.Release(ctx, &protocol.Dismissal{Identifier: args[0]})
			if err != nil {
				return err
			}
			return printJSON(cmd, ack)
		}),
	}

	var asTable bool
	roster := &cobra.Command{
		Use:   "roster",
		Short: "list registered mercenaries",
		Args:  cobra.NoArgs,
		RunE: withGuild(func(ctx context.Context, cmd *cobra.Command, guild *rpc.GuildClient, _ []string) error {
			stream, err := guild.Roster(ctx)
			if err != nil {
				return err
			}
			if !asTable {
				return follow(cmd, stream)
			}

			tbl := table.Table{
				Header: []string{"ID", "OFFER", "BUSY", "QUEST"},
			}
			for {
				m, err := stream.Recv()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}
				tbl.Append(m.Identifier, m.Offer, m.Busy, m.Quest)
			}
			return tbl.Write(cmd.OutOrStdout())
		}),
	}
	roster.Flags().BoolVarP(&asTable, "table", "t", false, "print as a table")

	board := &cobra.Command{
		Use:   "board",
		Short: "follow quest assignments as they happen",
		Args:  cobra.NoArgs,
		RunE: withGuild(func(ctx context.Context, cmd *cobra.Command, guild *rpc.GuildClient, _ []string) error {
			stream, err := guild.Board(ctx)
			if err != nil {
				return err
			}
			return follow(cmd, stream)
		}),
	}

	quests := &cobra.Command{
		Use:   "quests <id>",
		Short: "follow the quests handed to a mercenary",
		Args:  cobra.ExactArgs(1),
		RunE: withGuild(func(ctx context.Context, cmd *cobra.Command, guild *rpc.GuildClient, args []string) error {
			stream, err := guild.Quests(ctx, &protocol.FollowRequest{Mercenary: args[0]})
			if err != nil {
				return err
			}
			return follow(cmd, stream)
		}),
	}

	rootCmd.AddCommand(recruit, dismiss, release, roster, board, quests)
}
