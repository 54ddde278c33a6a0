package learning

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/hupe1980/mindmesh/core"
)

// ContextKey reduces a perception to a canonical string: keys are sorted and
// numeric values rounded to one decimal place, so near-identical situations
// collapse to the same key.
func ContextKey(p core.Perception) string {
	if len(p) == 0 {
		return ""
	}

	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(canonicalValue(p[k]))
	}
	return b.String()
}

func canonicalValue(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(roundTenth(n), 'f', 1, 64)
	case float32:
		return strconv.FormatFloat(roundTenth(float64(n)), 'f', 1, 64)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case string:
		return n
	case bool:
		return strconv.FormatBool(n)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
