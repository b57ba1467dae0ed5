package crypto_test

import (
	"bytes"
	"testing"

	"securechat/internal/constants"
	serrors "securechat/internal/errors"
	"securechat/pkg/crypto"
)

// --- Random Tests ---

func TestSecureRandom(t *testing.T) {
	buf := make([]byte, 32)
	if err := crypto.SecureRandom(buf); err != nil {
		t.Fatalf("SecureRandom failed: %v", err)
	}

	allZeros := true
	for _, b := range buf {
		if b != 0 {
			allZeros = false
			break
		}
	}
	if allZeros {
		t.Error("SecureRandom returned all zeros")
	}
}

func TestSecureRandomBytes(t *testing.T) {
	sizes := []int{16, 32, 64, 128}
	for _, size := range sizes {
		buf, err := crypto.SecureRandomBytes(size)
		if err != nil {
			t.Fatalf("SecureRandomBytes(%d) failed: %v", size, err)
		}
		if len(buf) != size {
			t.Errorf("SecureRandomBytes(%d) returned %d bytes", size, len(buf))
		}
	}
}

func TestZeroize(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	crypto.Zeroize(buf)

	for i, b := range buf {
		if b != 0 {
			t.Errorf("Zeroize failed at index %d: got %d, want 0", i, b)
		}
	}
}

func TestZeroizeMultiple(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{4, 5, 6}
	crypto.ZeroizeMultiple(a, b)

	for _, buf := range [][]byte{a, b} {
		for i, v := range buf {
			if v != 0 {
				t.Errorf("ZeroizeMultiple left byte %d at index %d", v, i)
			}
		}
	}
}

// --- X25519 Tests ---

func TestX25519KeyGeneration(t *testing.T) {
	kp, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}

	if len(kp.PublicKeyBytes()) != constants.X25519PublicKeySize {
		t.Errorf("Public key size: got %d, want %d", len(kp.PublicKeyBytes()), constants.X25519PublicKeySize)
	}
}

func TestX25519SharedSecretSymmetry(t *testing.T) {
	alice, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed for Alice: %v", err)
	}
	bob, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed for Bob: %v", err)
	}

	secretAlice, err := alice.SharedSecret(bob.PublicKeyBytes())
	if err != nil {
		t.Fatalf("SharedSecret failed for Alice: %v", err)
	}
	secretBob, err := bob.SharedSecret(alice.PublicKeyBytes())
	if err != nil {
		t.Fatalf("SharedSecret failed for Bob: %v", err)
	}

	if !bytes.Equal(secretAlice, secretBob) {
		t.Error("shared secrets do not match")
	}
	if len(secretAlice) != constants.X25519SharedSecretSize {
		t.Errorf("Shared secret size: got %d, want %d", len(secretAlice), constants.X25519SharedSecretSize)
	}
}

func TestX25519InvalidPeerKey(t *testing.T) {
	kp, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}

	// Wrong length
	if _, err := kp.SharedSecret(make([]byte, 16)); !serrors.Is(err, serrors.ErrInvalidPublicKey) {
		t.Errorf("short peer key: got %v, want ErrInvalidPublicKey", err)
	}

	// The all-zero point is low order and must be rejected
	if _, err := kp.SharedSecret(make([]byte, constants.X25519PublicKeySize)); !serrors.Is(err, serrors.ErrInvalidPublicKey) {
		t.Errorf("low-order peer key: got %v, want ErrInvalidPublicKey", err)
	}
}

// --- KDF Tests ---

func TestDeriveSessionKey(t *testing.T) {
	secret := make([]byte, constants.X25519SharedSecretSize)
	for i := range secret {
		secret[i] = byte(i)
	}

	key1, err := crypto.DeriveSessionKey(secret)
	if err != nil {
		t.Fatalf("DeriveSessionKey failed: %v", err)
	}
	key2, err := crypto.DeriveSessionKey(secret)
	if err != nil {
		t.Fatalf("DeriveSessionKey failed: %v", err)
	}

	if len(key1) != constants.SessionKeySize {
		t.Errorf("key size: got %d, want %d", len(key1), constants.SessionKeySize)
	}
	if !bytes.Equal(key1, key2) {
		t.Error("derivation is not deterministic")
	}
	if bytes.Equal(key1, secret) {
		t.Error("derived key equals input secret")
	}
}

func TestDeriveSessionKeyRejectsBadSecret(t *testing.T) {
	if _, err := crypto.DeriveSessionKey(make([]byte, 16)); err == nil {
		t.Error("expected error for short shared secret")
	}
}

func TestHash(t *testing.T) {
	transcript := []byte("CHATv1|alice|bob|....")

	sum := crypto.Hash(transcript)
	if len(sum) != constants.AADSize {
		t.Fatalf("digest size: got %d, want %d", len(sum), constants.AADSize)
	}
	if !bytes.Equal(sum, crypto.Hash(transcript)) {
		t.Error("hash is not deterministic")
	}
	if bytes.Equal(sum, crypto.Hash([]byte("CHATv1|alice|eve|...."))) {
		t.Error("different transcripts hashed equal")
	}
}

func TestConfirmationTag(t *testing.T) {
	key := make([]byte, constants.SessionKeySize)
	transcript := []byte("CHATv1|alice|bob|....")

	tag := crypto.ConfirmationTag(key, transcript)
	if len(tag) != constants.ConfirmationTagSize {
		t.Fatalf("tag size: got %d, want %d", len(tag), constants.ConfirmationTagSize)
	}

	if !crypto.VerifyConfirmationTag(tag, crypto.ConfirmationTag(key, transcript)) {
		t.Error("matching tags did not verify")
	}

	other := crypto.ConfirmationTag(key, []byte("CHATv1|alice|eve|...."))
	if crypto.VerifyConfirmationTag(tag, other) {
		t.Error("tags over different transcripts verified")
	}

	otherKey := bytes.Repeat([]byte{7}, constants.SessionKeySize)
	if crypto.VerifyConfirmationTag(tag, crypto.ConfirmationTag(otherKey, transcript)) {
		t.Error("tags under different keys verified")
	}
}
