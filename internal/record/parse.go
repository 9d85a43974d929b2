package record

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Grid is the parsed form of a grid value string "RxC:[i1,i2,...]", where
// the bracketed list holds 0-based checked cell indices in row-major order.
type Grid struct {
	Rows    int
	Cols    int
	Checked []int
}

var gridDimsRe = regexp.MustCompile(`^(\d+)x(\d+):`)

// ParseGrid parses a grid value string. It fails only when the leading
// "RxC:" dimension prefix is missing; a missing or empty index list parses
// as a grid with no checked cells.
func ParseGrid(s string) (Grid, bool) {
	m := gridDimsRe.FindStringSubmatch(s)
	if m == nil {
		return Grid{}, false
	}
	rows, _ := strconv.Atoi(m[1])
	cols, _ := strconv.Atoi(m[2])
	return Grid{Rows: rows, Cols: cols, Checked: parseCheckedIndices(s)}, true
}

// GridCellCount returns the number of checked cells in a grid value string.
// Malformed strings count as zero rather than failing; emptiness and
// garbage are indistinguishable on the wire.
func GridCellCount(s string) int {
	return len(parseCheckedIndices(s))
}

func parseCheckedIndices(s string) []int {
	open := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if open == -1 || end < open {
		return nil
	}
	inner := strings.TrimSpace(s[open+1 : end])
	if inner == "" {
		return nil
	}
	var indices []int
	for _, part := range strings.Split(inner, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		indices = append(indices, n)
	}
	return indices
}

// CellCoord converts a 0-based cell index into a "row,col" coordinate
// string for a grid with the given column count.
func CellCoord(index, cols int) string {
	if cols <= 0 {
		cols = 1
	}
	return strconv.Itoa(index/cols) + "," + strconv.Itoa(index%cols)
}

// ParseTimer converts a timer value string to seconds. Two formats exist on
// the wire: "M:SS.s" and a plain seconds string "S.s". Non-numeric pieces
// contribute zero, mirroring how the values were produced.
func ParseTimer(s string) float64 {
	if strings.Contains(s, ":") {
		parts := strings.SplitN(s, ":", 2)
		minutes := leadingInt(parts[0])
		seconds := leadingFloat(parts[1])
		return float64(minutes)*60 + seconds
	}
	return leadingFloat(s)
}

// leadingInt parses the leading base-10 integer of s, returning 0 when
// there is none.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	n, err := strconv.Atoi(s[:j])
	if err != nil {
		return 0
	}
	return n
}

// leadingFloat parses the leading decimal number of s, returning 0 when
// there is none.
func leadingFloat(s string) float64 {
	s = strings.TrimSpace(s)
	j := 0
	if j < len(s) && (s[j] == '+' || s[j] == '-') {
		j++
	}
	seenDot := false
	for j < len(s) {
		c := s[j]
		if c == '.' && !seenDot {
			seenDot = true
			j++
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		j++
	}
	f, err := strconv.ParseFloat(s[:j], 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseRange normalizes a range-slider value to a [min, max] tuple. Three
// wire shapes are accepted: a native two-element numeric array, a
// JSON-stringified array, and a comma-separated pair. Anything else is
// discarded.
func ParseRange(v Value) ([2]float64, bool) {
	switch rv := v.(type) {
	case []float64:
		if len(rv) == 2 {
			return [2]float64{rv[0], rv[1]}, true
		}
	case [2]float64:
		return rv, true
	case []any:
		if len(rv) == 2 {
			a, okA := ToNumber(rv[0])
			b, okB := ToNumber(rv[1])
			if okA && okB {
				return [2]float64{a, b}, true
			}
		}
	case string:
		var parsed []any
		if err := json.Unmarshal([]byte(rv), &parsed); err == nil {
			return ParseRange(parsed)
		}
		parts := strings.Split(rv, ",")
		if len(parts) == 2 {
			a, errA := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
			b, errB := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
			if errA == nil && errB == nil {
				return [2]float64{a, b}, true
			}
		}
	}
	return [2]float64{}, false
}

// ToNumber coerces a value to float64 the way the wire format's producers
// did: booleans become 0/1, numeric strings parse, the empty string is 0.
// Everything else fails.
func ToNumber(v Value) (float64, bool) {
	switch nv := v.(type) {
	case float64:
		return nv, true
	case int:
		return float64(nv), true
	case bool:
		if nv {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(nv)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Stringify renders a value as its wire string, matching the encoding that
// produced stored data: booleans as "true"/"false", numbers without a
// trailing ".0", arrays comma-joined.
func Stringify(v Value) string {
	switch sv := v.(type) {
	case nil:
		return ""
	case string:
		return sv
	case bool:
		return strconv.FormatBool(sv)
	case float64:
		return strconv.FormatFloat(sv, 'f', -1, 64)
	case int:
		return strconv.Itoa(sv)
	case []float64:
		parts := make([]string, len(sv))
		for i, f := range sv {
			parts[i] = strconv.FormatFloat(f, 'f', -1, 64)
		}
		return strings.Join(parts, ",")
	case []any:
		parts := make([]string, len(sv))
		for i, e := range sv {
			parts[i] = Stringify(e)
		}
		return strings.Join(parts, ",")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// Truthy applies loose boolean coercion: false, 0, the empty string and nil
// are false, everything else true. Checkbox values historically reached the
// wire as booleans, numbers and strings; grouping collapses them through
// this coercion.
func Truthy(v Value) bool {
	switch tv := v.(type) {
	case nil:
		return false
	case bool:
		return tv
	case float64:
		return tv != 0
	case int:
		return tv != 0
	case string:
		return tv != ""
	}
	return true
}
