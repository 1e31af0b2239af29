package httpapi

import (
	"encoding/json"
	"strconv"
)

// FirstString returns the first key from keys that is present as a
// non-empty string field of obj. The candidate order is the documented
// priority, not an implicit fallthrough.
func FirstString(obj map[string]json.RawMessage, keys ...string) (string, bool) {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok {
			continue
		}

		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			continue
		}
		if value != "" {
			return value, true
		}
	}
	return "", false
}

// IDString returns the object's "id" field in decimal string form. Both
// JSON numbers and strings are accepted.
func IDString(obj map[string]json.RawMessage) (string, bool) {
	raw, ok := obj["id"]
	if !ok {
		return "", false
	}

	var num int64
	if err := json.Unmarshal(raw, &num); err == nil {
		return strconv.FormatInt(num, 10), true
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil && str != "" {
		return str, true
	}

	return "", false
}

// DecodeObject unmarshals one array element into its fields, reporting
// whether the element was a JSON object at all.
func DecodeObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}
