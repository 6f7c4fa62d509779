package id

import (
	"fmt"
	"strconv"
	"strings"
)

const refPrefix = "TX-"

// FormatTransactionRef returns a transaction reference like "TX-000042".
func FormatTransactionRef(txID int64) string {
	return fmt.Sprintf("%s%06d", refPrefix, txID)
}

// FormatLineRef returns a line reference like "TX-000042b" (line 0='a', 1='b', etc.).
func FormatLineRef(txID int64, line int) string {
	return FormatTransactionRef(txID) + string(rune('a'+line%26))
}

// ParseTransactionRef accepts "TX-000042", "tx-42" or a bare "42" and
// returns the transaction ID. A trailing line letter is ignored.
func ParseTransactionRef(ref string) (int64, error) {
	s := strings.TrimSpace(ref)
	if len(s) >= len(refPrefix) && strings.EqualFold(s[:len(refPrefix)], refPrefix) {
		s = s[len(refPrefix):]
	}
	s = strings.TrimRight(s, "abcdefghijklmnopqrstuvwxyz")

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid transaction reference %q", ref)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid transaction reference %q: must be positive", ref)
	}
	return n, nil
}
