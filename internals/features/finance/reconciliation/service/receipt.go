package service

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
	"time"
)

// base32 without padding; 5 random bytes -> 8 chars.
var receiptEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewReceiptNumber builds the internal unique reference for a ledger
// entry: a date prefix staff can eyeball plus a random suffix wide
// enough (~1.1e12 combinations per day) to serve as an external lookup
// key. The unique index on the column catches the unlucky collision.
func NewReceiptNumber(now time.Time) string {
	buf := make([]byte, 5)
	_, _ = rand.Read(buf)

	var b strings.Builder
	b.WriteString("RC-")
	b.WriteString(now.UTC().Format("20060102"))
	b.WriteString("-")
	b.WriteString(receiptEncoding.EncodeToString(buf))
	return b.String()
}
