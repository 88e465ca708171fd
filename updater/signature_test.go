package updater

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"testing"

	errs "shoji/internal/infrastructure/errors"
)

// encodeContainer reproduces the wire format keys and signatures travel
// in: a comment line plus a base64 payload, wrapped in base64 once more.
func encodeContainer(t *testing.T, comment string, payload []byte) string {
	t.Helper()
	inner := base64.StdEncoding.EncodeToString(payload)
	file := "untrusted comment: " + comment + "\n" + inner + "\n"
	return base64.StdEncoding.EncodeToString([]byte(file))
}

func generateKeyMaterial(t *testing.T) (pubEncoded string, priv ed25519.PrivateKey, keyID []byte) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	keyID = []byte{1, 2, 3, 4, 5, 6, 7, 8}
	payload := append([]byte(signatureAlg), keyID...)
	payload = append(payload, pub...)
	return encodeContainer(t, "public key", payload), priv, keyID
}

func signData(t *testing.T, priv ed25519.PrivateKey, keyID, data []byte) string {
	t.Helper()
	sig := ed25519.Sign(priv, data)
	payload := append([]byte(signatureAlg), keyID...)
	payload = append(payload, sig...)
	return encodeContainer(t, "signature", payload)
}

func TestVerifySignatureRoundTrip(t *testing.T) {
	pubEncoded, priv, keyID := generateKeyMaterial(t)
	data := []byte("archive contents")
	sigEncoded := signData(t, priv, keyID, data)

	if err := VerifySignature(data, sigEncoded, pubEncoded); err != nil {
		t.Fatalf("VerifySignature: %v", err)
	}
}

func TestVerifySignatureTamperedData(t *testing.T) {
	pubEncoded, priv, keyID := generateKeyMaterial(t)
	sigEncoded := signData(t, priv, keyID, []byte("archive contents"))

	err := VerifySignature([]byte("tampered contents"), sigEncoded, pubEncoded)
	if !errs.IsCode(err, errs.CodeSignature) {
		t.Errorf("err = %v, want CodeSignature", err)
	}
}

func TestVerifySignatureKeyIDMismatch(t *testing.T) {
	pubEncoded, priv, _ := generateKeyMaterial(t)
	data := []byte("archive contents")
	sigEncoded := signData(t, priv, []byte{9, 9, 9, 9, 9, 9, 9, 9}, data)

	err := VerifySignature(data, sigEncoded, pubEncoded)
	if !errs.IsCode(err, errs.CodeSignature) {
		t.Errorf("err = %v, want CodeSignature", err)
	}
}

func TestVerifySignatureWrongKey(t *testing.T) {
	pubEncoded, _, keyID := generateKeyMaterial(t)
	_, otherPriv, _ := generateKeyMaterial(t)
	data := []byte("archive contents")
	sigEncoded := signData(t, otherPriv, keyID, data)

	err := VerifySignature(data, sigEncoded, pubEncoded)
	if !errs.IsCode(err, errs.CodeSignature) {
		t.Errorf("err = %v, want CodeSignature", err)
	}
}

func TestVerifySignatureMalformedInputs(t *testing.T) {
	pubEncoded, priv, keyID := generateKeyMaterial(t)
	data := []byte("archive contents")
	sigEncoded := signData(t, priv, keyID, data)

	tests := []struct {
		name string
		sig  string
		pub  string
	}{
		{"not base64 signature", "!!!", pubEncoded},
		{"not base64 public key", sigEncoded, "!!!"},
		{"empty signature container", base64.StdEncoding.EncodeToString([]byte("untrusted comment: x\n")), pubEncoded},
		{"truncated signature payload", encodeContainer(t, "sig", []byte("Ed")), pubEncoded},
		{"truncated key payload", sigEncoded, encodeContainer(t, "key", []byte("Ed"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := VerifySignature(data, tt.sig, tt.pub); !errs.IsCode(err, errs.CodeSignature) {
				t.Errorf("err = %v, want CodeSignature", err)
			}
		})
	}
}
