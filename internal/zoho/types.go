package zoho

import "encoding/json"

// Resources are a read-only projection of the upstream API: payloads pass
// through as raw JSON so no field is lost or reshaped.

// List holds a list payload extracted from an upstream envelope.
type List struct {
	// Raw is the array payload, or the full response body when the
	// envelope key is absent.
	Raw json.RawMessage
	// Count is the number of elements, -1 when the payload is not an array.
	Count int
}

// extractList pulls the named array out of an upstream envelope such as
// {"items": [...]} and counts its elements. Responses that do not match
// the envelope shape pass through whole with an unknown count.
func extractList(body json.RawMessage, key string) List {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return List{Raw: body, Count: -1}
	}

	raw, ok := envelope[key]
	if !ok {
		return List{Raw: body, Count: -1}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return List{Raw: raw, Count: -1}
	}
	return List{Raw: raw, Count: len(elems)}
}
