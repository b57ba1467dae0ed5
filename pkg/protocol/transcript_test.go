package protocol_test

import (
	"bytes"
	"testing"

	"securechat/pkg/protocol"
)

func TestTranscriptSymmetry(t *testing.T) {
	alice := []byte("alice")
	bob := []byte("bob")
	pubA := bytes.Repeat([]byte{0x01}, 32)
	pubB := bytes.Repeat([]byte{0xFF}, 32)

	// Each side passes (local, peer) in its own order; the transcripts
	// must be identical.
	fromAlice := protocol.BuildTranscript(alice, bob, pubA, pubB)
	fromBob := protocol.BuildTranscript(bob, alice, pubB, pubA)

	if !bytes.Equal(fromAlice, fromBob) {
		t.Errorf("transcripts differ:\n%q\n%q", fromAlice, fromBob)
	}
}

func TestTranscriptBindsAllInputs(t *testing.T) {
	alice := []byte("alice")
	bob := []byte("bob")
	pubA := bytes.Repeat([]byte{0x01}, 32)
	pubB := bytes.Repeat([]byte{0xFF}, 32)

	base := protocol.BuildTranscript(alice, bob, pubA, pubB)

	variants := [][]byte{
		protocol.BuildTranscript([]byte("alicf"), bob, pubA, pubB),
		protocol.BuildTranscript(alice, []byte("eve"), pubA, pubB),
		protocol.BuildTranscript(alice, bob, bytes.Repeat([]byte{0x02}, 32), pubB),
		protocol.BuildTranscript(alice, bob, pubA, bytes.Repeat([]byte{0xFE}, 32)),
	}

	for i, v := range variants {
		if bytes.Equal(base, v) {
			t.Errorf("variant %d: changed input produced identical transcript", i)
		}
	}
}

func TestTranscriptIdenticalNames(t *testing.T) {
	name := []byte("mallory")
	pubA := bytes.Repeat([]byte{0x01}, 32)
	pubB := bytes.Repeat([]byte{0x02}, 32)

	// Equal usernames are legal; key ordering still makes both views agree.
	a := protocol.BuildTranscript(name, name, pubA, pubB)
	b := protocol.BuildTranscript(name, name, pubB, pubA)
	if !bytes.Equal(a, b) {
		t.Error("transcripts with identical names differ")
	}
}
