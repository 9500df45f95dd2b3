package guild

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/caddyserver/caddy/v2"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"gfx.cafe/gfx/guild/lib/gateway"
	"gfx.cafe/gfx/guild/lib/guild/board"
	"gfx.cafe/gfx/guild/lib/guild/ident"
	"gfx.cafe/gfx/guild/lib/guild/matcher"
	"gfx.cafe/gfx/guild/lib/guild/rpc"
	"gfx.cafe/gfx/guild/lib/receptionist"
)

const (
	defaultGRPCAddress = ":7070"
	stopTimeout        = 5 * time.Second
)

func init() {
	caddy.RegisterModule((*App)(nil))
}

type App struct {
	Config

	board        *board.Board
	guild        *matcher.Guild
	receptionist *receptionist.Receptionist

	grpc     *grpc.Server
	grpcAddr net.Addr
	http     *http.Server
	httpAddr net.Addr

	// closed directly on a failed start, the servers may not be accepting yet
	listeners []net.Listener

	log *zap.Logger
}

func (T *App) CaddyModule() caddy.ModuleInfo {
	return caddy.ModuleInfo{
		ID: "guild",
		New: func() caddy.Module {
			return new(App)
		},
	}
}

func (T *App) Provision(ctx caddy.Context) error {
	T.provision(ctx.Logger())

	for _, module := range T.Discovery {
		if err := module.Provision(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (T *App) provision(log *zap.Logger) {
	T.log = log

	if T.Name == "" {
		T.Name = "default"
	}
	if T.RequeueWindow == 0 {
		T.RequeueWindow = caddy.Duration(matcher.DefaultRequeueWindow)
	}
	if T.Listen.GRPC == "" {
		T.Listen.GRPC = defaultGRPCAddress
	}

	var issuer ident.Issuer = ident.UUID{}
	if T.IdentifierPrefix != "" {
		issuer = &ident.Sequence{Prefix: T.IdentifierPrefix}
	}

	T.board = board.NewBoard(board.Config{
		Name:   T.Name,
		Buffer: T.BoardBuffer,
		Logger: log.Named("board"),
	})
	T.guild = matcher.NewGuild(matcher.Config{
		Name:           T.Name,
		PendingTimeout: time.Duration(T.PendingTimeout),
		RequeueWindow:  time.Duration(T.RequeueWindow),
		Issuer:         issuer,
		Announcer:      T.board,
		Logger:         log.Named("matcher"),
	})
	T.receptionist = receptionist.NewReceptionist(T.guild, receptionist.Config{
		MaxInFlight: T.MaxInFlight,
		Logger:      log.Named("receptionist"),
	})
}

func listen(address string) (net.Listener, error) {
	addr, err := caddy.ParseNetworkAddress(address)
	if err != nil {
		return nil, fmt.Errorf("parsing address %q: %v", address, err)
	}
	if addr.PortRangeSize() != 1 {
		return nil, fmt.Errorf("address %q must have exactly one port", address)
	}
	return net.Listen(addr.Network, addr.JoinHostPort(0))
}

func (T *App) Start() error {
	grpcListener, err := listen(T.Listen.GRPC)
	if err != nil {
		return err
	}
	T.grpcAddr = grpcListener.Addr()
	T.listeners = append(T.listeners, grpcListener)
	grpcServer := rpc.NewServer(T.receptionist, T.guild, T.board, T.log.Named("rpc"))
	T.grpc = grpcServer
	go func() {
		if err := grpcServer.Serve(grpcListener); err != nil {
			T.log.Error("grpc server stopped", zap.Error(err))
		}
	}()
	T.log.Info("listening", zap.String("transport", "grpc"), zap.Stringer("address", T.grpcAddr))

	if T.Listen.HTTP != "" {
		httpListener, err := listen(T.Listen.HTTP)
		if err != nil {
			T.abort()
			return err
		}
		T.httpAddr = httpListener.Addr()
		T.listeners = append(T.listeners, httpListener)
		httpServer := &http.Server{
			Handler:           gateway.NewGateway(T.receptionist, T.guild, T.log.Named("gateway")).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		T.http = httpServer
		go func() {
			if err := httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				T.log.Error("http server stopped", zap.Error(err))
			}
		}()
		T.log.Info("listening", zap.String("transport", "http"), zap.Stringer("address", T.httpAddr))
	}

	for _, module := range T.Discovery {
		if err := module.Start(T.guild); err != nil {
			T.abort()
			return fmt.Errorf("starting discovery: %v", err)
		}
	}

	T.receptionist.Status().MarkReady()
	return nil
}

// abort tears down whatever a failed Start left running.
func (T *App) abort() {
	for _, module := range T.Discovery {
		module.Stop()
	}
	if T.http != nil {
		if err := T.http.Close(); err != nil {
			T.log.Warn("http close", zap.Error(err))
		}
		T.http = nil
	}
	if T.grpc != nil {
		T.grpc.Stop()
		T.grpc = nil
	}
	for _, l := range T.listeners {
		_ = l.Close()
	}
	T.listeners = nil
}

func (T *App) Stop() error {
	T.receptionist.Status().MarkStopped()

	for _, module := range T.Discovery {
		module.Stop()
	}

	// resolves everything still waiting so open sessions can drain
	T.guild.Close()

	if T.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		if err := T.http.Shutdown(ctx); err != nil {
			T.log.Warn("http shutdown", zap.Error(err))
		}
		cancel()
	}

	if T.grpc != nil {
		stopped := make(chan struct{})
		go func() {
			T.grpc.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(stopTimeout):
			T.grpc.Stop()
			<-stopped
		}
	}

	T.board.Close()
	return nil
}

var _ caddy.Module = (*App)(nil)
var _ caddy.Provisioner = (*App)(nil)
var _ caddy.App = (*App)(nil)
