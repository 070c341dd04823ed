package util

import (
	"strconv"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// OptionalUint parses an optional id; an empty string yields nil.
func OptionalUint(s string) (*uint, error) {
	if s == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return nil, ErrInvalidArgument
	}
	v := uint(id)
	return &v, nil
}
