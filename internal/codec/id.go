package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ErrInvalidID is returned by ParseID for values that are not a positive
// integer in any of the accepted representations.
var ErrInvalidID = errors.New("invalid id")

// ParseID normalises an identifier to int64.  Callers hand ids around as
// numbers decoded from JSON (float64), numeric strings from URLs, driver
// integers, or big integers from BIGINT UNSIGNED columns.
func ParseID(v any) (int64, error) {
	var n int64
	switch t := v.(type) {
	case int:
		n = int64(t)
	case int32:
		n = int64(t)
	case int64:
		n = t
	case uint:
		if uint64(t) > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows int64", ErrInvalidID, t)
		}
		n = int64(t)
	case uint32:
		n = int64(t)
	case uint64:
		if t > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows int64", ErrInvalidID, t)
		}
		n = int64(t)
	case float64:
		if t != math.Trunc(t) || t > math.MaxInt64 || t < math.MinInt64 {
			return 0, fmt.Errorf("%w: %v", ErrInvalidID, t)
		}
		n = int64(t)
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidID, t.String())
		}
		n = i
	case *big.Int:
		if t == nil || !t.IsInt64() {
			return 0, fmt.Errorf("%w: %v", ErrInvalidID, t)
		}
		n = t.Int64()
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidID, t)
		}
		n = i
	case []byte:
		return ParseID(string(t))
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidID, v)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidID, n)
	}
	return n, nil
}
