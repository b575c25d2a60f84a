package id

import (
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewID32 returns a random (v4) UUID as exactly 32 lowercase hex characters.
func NewID32() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// ReceiptNumber is "REC-" followed by the Unix time in milliseconds.
func ReceiptNumber(now time.Time) string {
	return "REC-" + strconv.FormatInt(now.UnixMilli(), 10)
}
