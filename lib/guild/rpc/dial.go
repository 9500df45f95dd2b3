package rpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type DialConfig struct {
	// Codec is CodecJSON or CodecCBOR. Defaults to CodecJSON.
	Codec string
	// Dialer overrides how connections are made, mostly for tests.
	Dialer func(ctx context.Context, addr string) (net.Conn, error)
}

// Dial connects to a guild server. Every call on the returned connection uses the configured
// codec.
func Dial(target string, config DialConfig) (*grpc.ClientConn, error) {
	codec := config.Codec
	if codec == "" {
		codec = CodecJSON
	}

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codec)),
	}
	if config.Dialer != nil {
		opts = append(opts, grpc.WithContextDialer(config.Dialer))
	}
	return grpc.NewClient(target, opts...)
}
