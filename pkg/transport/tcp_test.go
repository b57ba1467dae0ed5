package transport_test

import (
	"bytes"
	"testing"
	"time"

	"securechat/pkg/transport"
)

// tcpPair returns two connected TCP transports over loopback.
func tcpPair(t *testing.T) (transport.Transport, transport.Transport) {
	t.Helper()

	ln, err := transport.ListenTCP("127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenTCP failed: %v", err)
	}
	defer ln.Close()

	accepted := make(chan transport.Transport, 1)
	errCh := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			errCh <- err
			return
		}
		accepted <- conn
	}()

	client, err := transport.DialTCP(ln.Addr())
	if err != nil {
		t.Fatalf("DialTCP failed: %v", err)
	}

	select {
	case server := <-accepted:
		return client, server
	case err := <-errCh:
		t.Fatalf("Accept failed: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("Accept timed out")
	}
	return nil, nil
}

func TestTCPRoundTrip(t *testing.T) {
	client, server := tcpPair(t)
	defer client.Close()
	defer server.Close()

	msg := []byte("tcp payload")
	if err := client.Send(msg); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	var got []byte
	for len(got) < len(msg) {
		chunk, err := server.Recv()
		if err != nil {
			t.Fatalf("Recv failed: %v", err)
		}
		got = append(got, chunk...)
	}
	if !bytes.Equal(got, msg) {
		t.Errorf("got %q, want %q", got, msg)
	}
}

func TestTCPPeerLabel(t *testing.T) {
	client, server := tcpPair(t)
	defer client.Close()
	defer server.Close()

	if client.PeerLabel() == "" || server.PeerLabel() == "" {
		t.Error("empty peer label")
	}
}

func TestTCPCloseUnblocksRecv(t *testing.T) {
	client, server := tcpPair(t)
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		_, err := client.Recv()
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	client.Close()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Recv returned nil error after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Recv did not unblock after Close")
	}

	// Close is idempotent
	if err := client.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
