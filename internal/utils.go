package internal

import (
	"os"
	"strings"
)

// IsDebugMode reports whether TABLELENS_DEBUG is set
func IsDebugMode() bool {
	isDebug := strings.ToLower(os.Getenv("TABLELENS_DEBUG"))
	return isDebug == "true" || isDebug == "1"
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
