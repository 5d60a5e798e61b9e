package policy

import (
	"encoding/json"
	"reflect"
)

func asObject(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func onlyKeys(m map[string]interface{}, allowed ...string) bool {
	for key := range m {
		found := false
		for _, a := range allowed {
			if key == a {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// onlyChanged reports whether every key other than `field` is unchanged.
func onlyChanged(before, after map[string]interface{}, field string) bool {
	for key, value := range before {
		if key != field && !reflect.DeepEqual(value, after[key]) {
			return false
		}
	}
	for key := range after {
		if _, ok := before[key]; !ok && key != field {
			return false
		}
	}
	return true
}
