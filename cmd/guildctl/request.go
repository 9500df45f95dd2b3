package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"gfx.cafe/gfx/guild/lib/guild/protocol"
	"gfx.cafe/gfx/guild/lib/guild/rpc"
)

func init() {
	var requirements descriptorFlags
	var count int

	cmd := &cobra.Command{
		Use:   "request",
		Short: "submit quests and wait for their acknowledgements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := requirements.descriptor()
			if err != nil {
				return err
			}
			if count < 1 {
				return errors.New("count must be at least 1")
			}

			conn, err := dial()
			if err != nil {
				return err
			}
			defer func() {
				_ = conn.Close()
			}()

			stream, err := rpc.NewReceptionistClient(conn).Request(cmd.Context())
			if err != nil {
				return err
			}

			sendErr := make(chan error, 1)
			go func() {
				for i := 0; i < count; i++ {
					if err := stream.Send(&protocol.RequestDetails{Requirements: &d}); err != nil {
						sendErr <- err
						return
					}
				}
				sendErr <- stream.CloseSend()
			}()

			for {
				ack, err := stream.Recv()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}
				if err = printJSON(cmd, ack); err != nil {
					return err
				}
			}

			return <-sendErr
		},
	}
	requirements.register(cmd.Flags())
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of identical quests to submit")

	rootCmd.AddCommand(cmd)
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "report whether the receptionist is taking requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := dial()
			if err != nil {
				return err
			}
			defer func() {
				_ = conn.Close()
			}()

			ack, err := rpc.NewReceptionistClient(conn).Active(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, ack)
		},
	})
}
