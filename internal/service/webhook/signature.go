package webhook

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
)

// signingKey derives the bot's ed25519 keypair from its secret: the
// secret is repeated until it covers the 32-byte seed, then truncated.
// The platform derives the same public key on its side, so control of
// the secret is provable without ever transmitting it.
func signingKey(secret string) (ed25519.PrivateKey, error) {
	if secret == "" {
		return nil, fmt.Errorf("empty bot secret")
	}
	seed := secret
	for len(seed) < ed25519.SeedSize {
		seed += seed
	}
	return ed25519.NewKeyFromSeed([]byte(seed[:ed25519.SeedSize])), nil
}

// HandshakeResponse is the payload answering an endpoint validation
// challenge.
type HandshakeResponse struct {
	PlainToken string `json:"plain_token"`
	Signature  string `json:"signature"`
}

// Handshake signs the platform's validation challenge: the plain token
// is echoed unchanged alongside the hex signature over
// eventTS + plainToken.
func Handshake(secret, plainToken, eventTS string) (*HandshakeResponse, error) {
	key, err := signingKey(secret)
	if err != nil {
		return nil, err
	}

	sig := ed25519.Sign(key, []byte(eventTS+plainToken))

	return &HandshakeResponse{
		PlainToken: plainToken,
		Signature:  hex.EncodeToString(sig),
	}, nil
}

// VerifySignature checks the request signature over
// timestamp + rawBody. rawBody must be the bytes exactly as received;
// re-serializing would change whitespace and ordering and invalidate
// the signature. Structurally invalid signatures return false, never
// an error.
func VerifySignature(secret, timestamp string, rawBody []byte, signatureHex string) bool {
	key, err := signingKey(secret)
	if err != nil {
		return false
	}

	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	msg := make([]byte, 0, len(timestamp)+len(rawBody))
	msg = append(msg, timestamp...)
	msg = append(msg, rawBody...)

	return ed25519.Verify(key.Public().(ed25519.PublicKey), msg, sig)
}
