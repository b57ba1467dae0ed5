package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	serrors "securechat/internal/errors"
	"securechat/pkg/chat"
	"securechat/pkg/observability"
)

// connect: join a remote chat host as a client.
func connectCmd() *cobra.Command {
	var (
		addr    string
		device  string
		channel uint8
	)

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect to a chat host",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := dialPeer(addr, device, channel)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := chat.NewSession(t, username)
			s.SetObserver(chat.NewTracingObserver(observability.NewOTelTracer("securechat")))

			if err := s.Handshake(ctx); err != nil {
				return err
			}
			fmt.Printf("* connected to %s\n", s.PeerLabel())

			go func() {
				<-ctx.Done()
				s.Close()
			}()

			g, _ := errgroup.WithContext(ctx)
			g.Go(func() error {
				defer stop()
				for {
					text, err := s.RecvMessage()
					if err != nil {
						if serrors.Is(err, serrors.ErrPeerClosed) ||
							serrors.Is(err, serrors.ErrSessionClosed) {
							fmt.Println("* disconnected")
							return nil
						}
						return err
					}
					fmt.Println(text)
				}
			})
			g.Go(func() error {
				defer s.Close()
				sc := bufio.NewScanner(os.Stdin)
				for sc.Scan() {
					line := sc.Text()
					if line == "" {
						continue
					}
					if err := s.SendMessage(line); err != nil {
						if serrors.Is(err, serrors.ErrSessionClosed) {
							return nil
						}
						return err
					}
				}
				return sc.Err()
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "127.0.0.1:7000", "TCP host address")
	cmd.Flags().StringVarP(&device, "device", "d", "", "Bluetooth device address (bt transport)")
	cmd.Flags().Uint8VarP(&channel, "channel", "c", 1, "RFCOMM channel (bt transport)")
	return cmd
}
