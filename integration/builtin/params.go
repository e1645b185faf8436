package builtin

import (
	"math"
	"strconv"
	"strings"
)

func stringParam(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return strings.TrimSpace(v)
}

func stringConfig(cfg map[string]any, key string) string {
	v, _ := cfg[key].(string)
	return strings.TrimSpace(v)
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case float32:
		return int64(x), true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return int64(x), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func intParam(args map[string]any, name string, fallback, max int) int {
	v, ok := args[name]
	if !ok {
		return fallback
	}
	n, ok := asInt64(v)
	if !ok || n <= 0 {
		return fallback
	}
	if max > 0 && n > int64(max) {
		return max
	}
	return int(n)
}
