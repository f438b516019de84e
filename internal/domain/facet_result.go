package domain

import "encoding/json"

// FacetResult is the tagged outcome of one facet: either a value (structured
// map or narrative string) or an error description. Exactly one exists per
// requested facet after an analyze call settles.
type FacetResult struct {
	Value any
	Err   string
}

// SuccessResult wraps a facet value.
func SuccessResult(value any) FacetResult {
	return FacetResult{Value: value}
}

// FailureResult wraps a facet error.
func FailureResult(err error) FacetResult {
	return FacetResult{Err: err.Error()}
}

// Failed reports whether the facet ended in failure.
func (r FacetResult) Failed() bool {
	return r.Err != ""
}

// StructuredValue returns the value as a map when the facet produced one.
func (r FacetResult) StructuredValue() (map[string]any, bool) {
	m, ok := r.Value.(map[string]any)
	return m, ok
}

// MarshalJSON encodes a failure as {"error": "..."} and a success as the bare
// value, matching the composite wire shape.
func (r FacetResult) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(map[string]string{"error": r.Err})
	}
	if r.Value == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON restores the tagged form from the wire shape. An object whose
// only key is "error" with a string value decodes as a failure.
func (r *FacetResult) UnmarshalJSON(data []byte) error {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	if m, ok := value.(map[string]any); ok && len(m) == 1 {
		if msg, isErr := m["error"].(string); isErr {
			r.Err = msg
			r.Value = nil
			return nil
		}
	}

	r.Value = value
	r.Err = ""
	return nil
}
