// transcript.go builds the handshake transcript.
//
// The transcript is a deterministic byte string binding both parties'
// identities and both ephemeral public keys:
//
//	"CHATv1|" || name_a || "|" || name_b || "|" || pub_a || "|" || pub_b
//
// where (name_a, name_b) and (pub_a, pub_b) are the lexicographically sorted
// pairs of the local and peer values. Sorting makes the transcript identical
// on both ends regardless of who connected to whom, so the protocol needs no
// initiator/responder roles. Confirming an HMAC over this transcript defeats
// key-substitution and unknown-key-share attacks: an attacker cannot swap an
// identity or a public key without changing the transcript and therefore the
// confirmation tag.
package protocol

import (
	"bytes"

	"securechat/internal/constants"
)

// BuildTranscript computes the order-independent handshake transcript from
// both identities and both raw public keys.
func BuildTranscript(localName, peerName, localPub, peerPub []byte) []byte {
	nameA, nameB := sortPair(localName, peerName)
	pubA, pubB := sortPair(localPub, peerPub)

	sep := []byte(constants.TranscriptSeparator)

	var b bytes.Buffer
	b.Grow(len(constants.ProtocolName) + 4*len(sep) +
		len(nameA) + len(nameB) + len(pubA) + len(pubB))
	b.WriteString(constants.ProtocolName)
	b.Write(sep)
	b.Write(nameA)
	b.Write(sep)
	b.Write(nameB)
	b.Write(sep)
	b.Write(pubA)
	b.Write(sep)
	b.Write(pubB)
	return b.Bytes()
}

// sortPair returns (x, y) ordered lexicographically.
func sortPair(x, y []byte) ([]byte, []byte) {
	if bytes.Compare(x, y) <= 0 {
		return x, y
	}
	return y, x
}
