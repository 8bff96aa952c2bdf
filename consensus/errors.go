package consensus

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	LOCK_ERR_INDEX_OUT_OF_BOUND    ErrorCode = "LOCK_ERR_INDEX_OUT_OF_BOUND"
	LOCK_ERR_ITEM_MISSING          ErrorCode = "LOCK_ERR_ITEM_MISSING"
	LOCK_ERR_LENGTH_NOT_ENOUGH     ErrorCode = "LOCK_ERR_LENGTH_NOT_ENOUGH"
	LOCK_ERR_ENCODING              ErrorCode = "LOCK_ERR_ENCODING"
	LOCK_ERR_AMOUNT                ErrorCode = "LOCK_ERR_AMOUNT"
	LOCK_ERR_ARGS_LENGTH           ErrorCode = "LOCK_ERR_ARGS_LENGTH"
	LOCK_ERR_DATA_LENGTH           ErrorCode = "LOCK_ERR_DATA_LENGTH"
	LOCK_ERR_TRANSACTION_STRUCTURE ErrorCode = "LOCK_ERR_TRANSACTION_STRUCTURE"
	LOCK_ERR_OVERFLOW              ErrorCode = "LOCK_ERR_OVERFLOW"
)

// exitCodes follows the numbering the deployed script returns to the host.
// Codes 1-4 are the host syscall failures; the rest belong to the lock.
var exitCodes = map[ErrorCode]int8{
	LOCK_ERR_INDEX_OUT_OF_BOUND:    1,
	LOCK_ERR_ITEM_MISSING:          2,
	LOCK_ERR_LENGTH_NOT_ENOUGH:     3,
	LOCK_ERR_ENCODING:              4,
	LOCK_ERR_AMOUNT:                5,
	LOCK_ERR_ARGS_LENGTH:           6,
	LOCK_ERR_DATA_LENGTH:           7,
	LOCK_ERR_TRANSACTION_STRUCTURE: 8,
	LOCK_ERR_OVERFLOW:              9,
}

// ExitCode returns the numeric verdict for c, or -1 for an unknown code.
func (c ErrorCode) ExitCode() int8 {
	if v, ok := exitCodes[c]; ok {
		return v
	}
	return -1
}

type LockError struct {
	Code ErrorCode
	Msg  string
}

func (e *LockError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func lockerr(code ErrorCode, msg string) error {
	return &LockError{Code: code, Msg: msg}
}

// ErrorCodeOf extracts the lock error code carried by err, looking through wrapping.
func ErrorCodeOf(err error) (ErrorCode, bool) {
	var le *LockError
	if errors.As(err, &le) && le != nil {
		return le.Code, true
	}
	return "", false
}
