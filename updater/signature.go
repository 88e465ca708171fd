package updater

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/binary"

	errs "shoji/internal/infrastructure/errors"
)

// Keys and signatures use the minisign container: a comment line followed
// by a base64 payload of alg id ("Ed"), an 8 byte key id and the key or
// signature material. Both inputs arrive base64 wrapped once more so they
// can travel inside JSON and config files.

const signatureAlg = "Ed"

type publicKey struct {
	keyID [8]byte
	key   ed25519.PublicKey
}

type signature struct {
	keyID [8]byte
	sig   []byte
}

func decodeContainer(encoded, op string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errs.Wrap(op, errs.CodeSignature, err)
	}
	lines := bytes.Split(raw, []byte("\n"))
	var payload []byte
	for _, line := range lines {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || bytes.HasPrefix(line, []byte("untrusted comment:")) ||
			bytes.HasPrefix(line, []byte("trusted comment:")) {
			continue
		}
		payload, err = base64.StdEncoding.DecodeString(string(line))
		if err != nil {
			return nil, errs.Wrap(op, errs.CodeSignature, err)
		}
		break
	}
	if payload == nil {
		return nil, errs.New(op, errs.CodeSignature, "empty signature container")
	}
	return payload, nil
}

func parsePublicKey(encoded string) (publicKey, error) {
	const op = "updater.parse_public_key"
	payload, err := decodeContainer(encoded, op)
	if err != nil {
		return publicKey{}, err
	}
	if len(payload) != 2+8+ed25519.PublicKeySize {
		return publicKey{}, errs.New(op, errs.CodeSignature, "malformed public key")
	}
	if string(payload[:2]) != signatureAlg {
		return publicKey{}, errs.New(op, errs.CodeSignature, "unsupported key algorithm")
	}
	var pk publicKey
	copy(pk.keyID[:], payload[2:10])
	pk.key = ed25519.PublicKey(payload[10:])
	return pk, nil
}

func parseSignature(encoded string) (signature, error) {
	const op = "updater.parse_signature"
	payload, err := decodeContainer(encoded, op)
	if err != nil {
		return signature{}, err
	}
	if len(payload) != 2+8+ed25519.SignatureSize {
		return signature{}, errs.New(op, errs.CodeSignature, "malformed signature")
	}
	if string(payload[:2]) != signatureAlg {
		return signature{}, errs.New(op, errs.CodeSignature, "unsupported signature algorithm")
	}
	var sig signature
	copy(sig.keyID[:], payload[2:10])
	sig.sig = payload[10:]
	return sig, nil
}

// VerifySignature checks data against a detached signature using the
// given public key. Both signature and key are base64 wrapped minisign
// containers. The signature's key id must match the public key's.
func VerifySignature(data []byte, signatureEncoded, publicKeyEncoded string) error {
	const op = "updater.verify_signature"
	pk, err := parsePublicKey(publicKeyEncoded)
	if err != nil {
		return err
	}
	sig, err := parseSignature(signatureEncoded)
	if err != nil {
		return err
	}
	if binary.LittleEndian.Uint64(pk.keyID[:]) != binary.LittleEndian.Uint64(sig.keyID[:]) {
		return errs.New(op, errs.CodeSignature, "signature key id mismatch")
	}
	if !ed25519.Verify(pk.key, data, sig.sig) {
		return errs.New(op, errs.CodeSignature, "signature verification failed")
	}
	return nil
}
