package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"gfx.cafe/gfx/guild/lib/guild/rpc"
)

var (
	address string
	codec   string
)

var rootCmd = &cobra.Command{
	Use:   "guildctl",
	Short: "talk to a guild server",
	Long: `
	guildctl submits quests and manages mercenaries of a running guild
`,
	Example: `  $ guildctl request --memory 4GiB --device-type gpu
  $ guildctl recruit m1 --memory 8GiB --region us_east
  $ guildctl board
  $ guildctl quests m1
  `,

	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&address, "address", "a", "localhost:7070", "guild grpc address")
	rootCmd.PersistentFlags().StringVar(&codec, "codec", rpc.CodecJSON, "wire codec (json or cbor)")
}

func dial() (*grpc.ClientConn, error) {
	switch codec {
	case rpc.CodecJSON, rpc.CodecCBOR:
	default:
		return nil, fmt.Errorf("unknown codec %q", codec)
	}
	return rpc.Dial(address, rpc.DialConfig{Codec: codec})
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	return enc.Encode(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
