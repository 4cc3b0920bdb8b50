package http

import (
	"strconv"
	"strings"
)

// SplitPathSuffix returns the path segments following prefix, with empty
// trailing segments dropped.
func SplitPathSuffix(path, prefix string) []string {
	remaining := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if remaining == "" {
		return nil
	}
	return strings.Split(remaining, "/")
}

func ParseID(segment string) (int64, bool) {
	id, err := strconv.ParseInt(segment, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
