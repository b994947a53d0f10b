package orders

import (
	"crypto/rand"
	"fmt"
	"time"
)

// orderNumberAttempts bounds how many times checkout retries when a freshly
// generated number collides with an existing one.
const orderNumberAttempts = 3

const orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateOrderNumber returns a customer-facing identifier in the form
// ORD-YYYYMMDD-XXXX where the suffix is four random uppercase base-36
// characters. The suffix keeps numbers unguessable; uniqueness is enforced
// by the database index and a retry loop at the call site.
func GenerateOrderNumber(now time.Time) (string, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("reading random suffix: %w", err)
	}
	suffix := make([]byte, len(buf))
	for i, b := range buf {
		suffix[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix), nil
}
