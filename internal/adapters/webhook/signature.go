package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	perr "triagebot/internal/platform/errors"
)

// SignatureHeader carries the HMAC-SHA256 of the raw body
const SignatureHeader = "X-Hub-Signature-256"

// Sign returns the header value GitHub would send for body
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks header against body in constant time
func VerifySignature(secret, body []byte, header string) error {
	if len(secret) == 0 {
		return nil
	}
	hexSig, ok := strings.CutPrefix(strings.TrimSpace(header), "sha256=")
	if !ok || hexSig == "" {
		return perr.WithField(perr.Unauthorizedf("missing or malformed webhook signature"), SignatureHeader)
	}
	got, err := hex.DecodeString(hexSig)
	if err != nil {
		return perr.WithField(perr.Unauthorizedf("malformed webhook signature"), SignatureHeader)
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return perr.WithField(perr.Unauthorizedf("webhook signature mismatch"), SignatureHeader)
	}
	return nil
}
