package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParamError represents an invalid path or query parameter
type ParamError struct {
	Code    string
	Message string
}

func (e *ParamError) Error() string {
	return e.Message
}

// ParseID parses a positive numeric identifier such as a path ":id".
func ParseID(name, raw string) (uint, error) {
	raw = strings.TrimSpace(raw)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, &ParamError{
			Code:    "INVALID_ID",
			Message: fmt.Sprintf("%s must be a positive integer", name),
		}
	}
	return uint(id), nil
}

// ParseOptionalID parses an optional filter such as "?vehicle_id=". An empty
// value returns nil.
func ParseOptionalID(name, raw string) (*uint, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := ParseID(name, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
