package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"securechat/pkg/chat"
	"securechat/pkg/observability"
)

// listen: host a chat room. Every inbound connection is handshaked and
// registered; inbound messages are printed and relayed to the other peers.
func listenCmd() *cobra.Command {
	var (
		addr    string
		channel uint8
	)

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Host a chat room and relay messages between peers",
		Long: `Host a chat room. Inbound messages are printed and relayed to every
other peer. Lines typed on stdin are broadcast; "/msg <label> <text>"
sends a private message to one peer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ln, err := newListener(addr, channel)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tracer := observability.NewOTelTracer("securechat")
			handler := &hostHandler{}
			reg := chat.NewRegistry(chat.RegistryConfig{
				Username: username,
				Listener: ln,
				Handler:  handler,
				Logger:   logger,
				OnDrop: func(label string, err error) {
					fmt.Printf("* dropped %s: %v\n", label, err)
				},
				ObserverFactory: func(*chat.Session) chat.Observer {
					return chat.NewTracingObserver(tracer)
				},
			})
			handler.reg = reg

			fmt.Printf("* hosting as %s on %s\n", username, ln.Addr())

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return reg.Run(gctx)
			})
			g.Go(func() error {
				defer stop()
				return hostInput(reg)
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":7000", "TCP listen address")
	cmd.Flags().Uint8VarP(&channel, "channel", "c", 1, "RFCOMM channel (bt transport)")
	return cmd
}

// hostInput reads stdin lines and broadcasts them until EOF.
func hostInput(reg *chat.Registry) error {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if target, text, ok := parsePrivate(line); ok {
			if err := reg.SendTo(target, "[PRIVATE] "+username, text); err != nil {
				fmt.Printf("* %s: %v\n", target, err)
			}
			continue
		}

		reg.Broadcast(username, line)
	}
	return sc.Err()
}

// parsePrivate recognizes "/msg <label> <text>".
func parsePrivate(line string) (target, text string, ok bool) {
	if !strings.HasPrefix(line, "/msg ") {
		return "", "", false
	}
	rest := strings.TrimPrefix(line, "/msg ")
	parts := strings.SplitN(rest, " ", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// hostHandler prints room events and relays each peer's messages to the
// rest of the room.
type hostHandler struct {
	reg *chat.Registry
}

func (h *hostHandler) OnJoin(s *chat.Session) {
	fmt.Printf("* %s joined\n", s.PeerLabel())
}

func (h *hostHandler) OnLeave(label string, err error) {
	fmt.Printf("* %s left\n", label)
}

func (h *hostHandler) OnMessage(label, text string) {
	fmt.Printf("%s: %s\n", label, text)
	h.reg.ForwardFrom(label, label, text)
}
