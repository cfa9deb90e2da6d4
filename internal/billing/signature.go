// Package billing turns payment-provider webhooks into subscription column
// updates on the legacy users table.
package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader is the request header carrying the webhook signature.
const SignatureHeader = "Stripe-Signature"

// DefaultTolerance is how far the signed timestamp may drift from now.
const DefaultTolerance = 5 * time.Minute

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("webhook signature mismatch")
	ErrTimestampExpired = errors.New("webhook timestamp outside tolerance")
)

// VerifySignature checks a "t=<unix>,v1=<hex>" header against an
// HMAC-SHA256 of "<t>.<payload>" keyed by secret.  Any one matching v1
// entry is enough; other schemes in the header are ignored.
func VerifySignature(payload []byte, header, secret string, now time.Time, tolerance time.Duration) error {
	if header == "" || secret == "" {
		return ErrMissingSignature
	}
	var ts string
	var sigs [][]byte
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "v1":
			if b, err := hex.DecodeString(v); err == nil {
				sigs = append(sigs, b)
			}
		}
	}
	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil || len(sigs) == 0 {
		return ErrMissingSignature
	}

	expected := computeSignature(payload, ts, secret)
	matched := false
	for _, s := range sigs {
		if hmac.Equal(s, expected) {
			matched = true
			break
		}
	}
	if !matched {
		return ErrInvalidSignature
	}
	if tolerance > 0 {
		drift := now.Sub(time.Unix(unix, 0))
		if drift > tolerance || drift < -tolerance {
			return ErrTimestampExpired
		}
	}
	return nil
}

// SignHeader builds a header value for payload at t.  Tests and local
// tooling use it to produce requests the verifier accepts.
func SignHeader(payload []byte, secret string, t time.Time) string {
	ts := strconv.FormatInt(t.Unix(), 10)
	return "t=" + ts + ",v1=" + hex.EncodeToString(computeSignature(payload, ts, secret))
}

func computeSignature(payload []byte, ts, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}
