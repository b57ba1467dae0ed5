package crypto_test

import (
	"testing"

	"securechat/internal/constants"
	serrors "securechat/internal/errors"
	"securechat/pkg/crypto"
)

func newTestAEAD(t *testing.T) *crypto.AEAD {
	t.Helper()
	key, err := crypto.SecureRandomBytes(constants.SessionKeySize)
	if err != nil {
		t.Fatalf("SecureRandomBytes failed: %v", err)
	}
	a, err := crypto.NewAEAD(key)
	if err != nil {
		t.Fatalf("NewAEAD failed: %v", err)
	}
	return a
}

func TestAEADRejectsBadKeySize(t *testing.T) {
	for _, size := range []int{0, 16, 31, 33, 64} {
		if _, err := crypto.NewAEAD(make([]byte, size)); !serrors.Is(err, serrors.ErrInvalidKeySize) {
			t.Errorf("key size %d: got %v, want ErrInvalidKeySize", size, err)
		}
	}
}

func TestAEADRoundTrip(t *testing.T) {
	a := newTestAEAD(t)
	aad := []byte("session-aad")

	messages := []string{
		"",
		"hello",
		"a longer message spanning more than one AES block to exercise the cipher",
		"привет мир",
		"日本語のテキスト",
		"emoji: 🔐🗝️",
	}

	for _, msg := range messages {
		sealed, err := a.Seal([]byte(msg), aad)
		if err != nil {
			t.Fatalf("Seal(%q) failed: %v", msg, err)
		}
		if len(sealed) != len(msg)+a.Overhead() {
			t.Errorf("Seal(%q): sealed length %d, want %d", msg, len(sealed), len(msg)+a.Overhead())
		}

		plain, err := a.Open(sealed, aad)
		if err != nil {
			t.Fatalf("Open failed for %q: %v", msg, err)
		}
		if string(plain) != msg {
			t.Errorf("round trip: got %q, want %q", plain, msg)
		}
	}
}

func TestAEADNonceUniqueness(t *testing.T) {
	a := newTestAEAD(t)
	aad := []byte("aad")
	plaintext := []byte("same message every time")

	const n = 10000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		sealed, err := a.Seal(plaintext, aad)
		if err != nil {
			t.Fatalf("Seal failed at iteration %d: %v", i, err)
		}
		nonce := string(sealed[:constants.NonceSize])
		if _, dup := seen[nonce]; dup {
			t.Fatalf("nonce repeated at iteration %d", i)
		}
		seen[nonce] = struct{}{}
	}
}

func TestAEADTamperDetection(t *testing.T) {
	a := newTestAEAD(t)
	aad := []byte("aad")

	sealed, err := a.Seal([]byte("integrity matters"), aad)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	// Flipping any single bit anywhere in nonce, ciphertext, or tag must
	// fail authentication.
	for i := 0; i < len(sealed); i++ {
		for bit := uint(0); bit < 8; bit++ {
			corrupted := make([]byte, len(sealed))
			copy(corrupted, sealed)
			corrupted[i] ^= 1 << bit

			if _, err := a.Open(corrupted, aad); !serrors.Is(err, serrors.ErrAuthenticationFailed) {
				t.Fatalf("bit flip at byte %d bit %d: got %v, want ErrAuthenticationFailed", i, bit, err)
			}
		}
	}
}

func TestAEADBindsAAD(t *testing.T) {
	a := newTestAEAD(t)

	sealed, err := a.Seal([]byte("bound to a session"), []byte("session-1"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	if _, err := a.Open(sealed, []byte("session-2")); !serrors.Is(err, serrors.ErrAuthenticationFailed) {
		t.Errorf("wrong AAD: got %v, want ErrAuthenticationFailed", err)
	}
	if _, err := a.Open(sealed, nil); !serrors.Is(err, serrors.ErrAuthenticationFailed) {
		t.Errorf("missing AAD: got %v, want ErrAuthenticationFailed", err)
	}
}

func TestAEADRejectsShortCiphertext(t *testing.T) {
	a := newTestAEAD(t)

	for _, size := range []int{0, 1, constants.NonceSize, constants.MinMessageSize - 1} {
		if _, err := a.Open(make([]byte, size), nil); !serrors.Is(err, serrors.ErrCiphertextTooShort) {
			t.Errorf("size %d: got %v, want ErrCiphertextTooShort", size, err)
		}
	}
}

func TestAEADDifferentKeysDoNotInterop(t *testing.T) {
	a := newTestAEAD(t)
	b := newTestAEAD(t)
	aad := []byte("aad")

	sealed, err := a.Seal([]byte("secret"), aad)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if _, err := b.Open(sealed, aad); !serrors.Is(err, serrors.ErrAuthenticationFailed) {
		t.Errorf("cross-key decryption: got %v, want ErrAuthenticationFailed", err)
	}
}
