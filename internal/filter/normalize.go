package filter

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// Normalize converts a raw filter input into a FilterValue. ok is false
// when the input is vacuous ("", an empty list, a range with no bounds),
// meaning the field's filter should be removed.
//
// Accepted inputs: nil, string, numbers, []string, []any, types.FilterValue,
// and map[string]any / map[string]string with min, max, from and to keys.
func Normalize(raw any) (f types.FilterValue, ok bool, err error) {
	switch v := raw.(type) {
	case nil:
		return f, false, nil
	case types.FilterValue:
		f = v
	case *types.FilterValue:
		if v == nil {
			return f, false, nil
		}
		f = *v
	case string:
		f.Text = v
	case types.Value:
		f.Text = v.Text()
	case float64, float32, int, int64, int32:
		f.Text = types.ValueOf(v).Text()
	case []string:
		f.Values = compactStrings(v)
	case []any:
		vals := make([]string, 0, len(v))
		for _, x := range v {
			vals = append(vals, types.ValueOf(x).Text())
		}
		f.Values = compactStrings(vals)
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return normalizeRange(m)
	case map[string]any:
		return normalizeRange(v)
	default:
		return f, false, fmt.Errorf("%w: %T", types.ErrInvalidFilter, raw)
	}
	if f.IsEmpty() {
		return types.FilterValue{}, false, nil
	}
	return f, true, nil
}

func normalizeRange(m map[string]any) (types.FilterValue, bool, error) {
	var f types.FilterValue
	for key, raw := range m {
		switch strings.ToLower(key) {
		case "min":
			n, set, err := rangeNumber(key, raw)
			if err != nil {
				return types.FilterValue{}, false, err
			}
			if set {
				f.Min = &n
			}
		case "max":
			n, set, err := rangeNumber(key, raw)
			if err != nil {
				return types.FilterValue{}, false, err
			}
			if set {
				f.Max = &n
			}
		case "from":
			f.From = types.ValueOf(raw).Text()
		case "to":
			f.To = types.ValueOf(raw).Text()
		default:
			return types.FilterValue{}, false, fmt.Errorf("%w: unknown range key %q", types.ErrInvalidFilter, key)
		}
	}
	if f.IsEmpty() {
		return types.FilterValue{}, false, nil
	}
	return f, true, nil
}

// rangeNumber reads a range bound; blank and null bounds are unset.
func rangeNumber(key string, raw any) (float64, bool, error) {
	v := types.ValueOf(raw)
	if v.IsNull() {
		return 0, false, nil
	}
	if n, ok := v.Float(); ok {
		return n, true, nil
	}
	text := strings.TrimSpace(v.Text())
	if text == "" {
		return 0, false, nil
	}
	n, ok := types.ParseNumericLoose(text)
	if !ok {
		return 0, false, fmt.Errorf("%w: %s bound %q is not a number", types.ErrInvalidFilter, key, text)
	}
	return n, true, nil
}

func compactStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return in
}
