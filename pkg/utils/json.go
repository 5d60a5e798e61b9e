package utils

import "encoding/json"

// Decode converts a JSON-shaped datastore value into a typed struct.
func Decode(value interface{}, out interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// Plain converts any marshalable value into its JSON-shaped form
// (map[string]interface{}, []interface{}, string, float64, bool or nil).
func Plain(value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
