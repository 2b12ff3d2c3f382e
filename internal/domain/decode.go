package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// StringList decodes from a JSON array of strings, a single string, or null
type StringList []string

// UnmarshalJSON implements json.Unmarshaler
func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			*l = nil
		} else {
			*l = StringList{single}
		}
		return nil
	}

	// Mixed arrays keep their string members
	var mixed []interface{}
	if err := json.Unmarshal(data, &mixed); err == nil {
		out := make(StringList, 0, len(mixed))
		for _, v := range mixed {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		*l = out
		return nil
	}

	*l = nil
	return nil
}

// MarshalJSON encodes a nil list as [] rather than null
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// parseRating accepts a JSON number or numeric string; anything else is nil
func parseRating(raw json.RawMessage) *int {
	if len(raw) == 0 {
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		n := int(f)
		return &n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil
		}
		return &n
	}

	return nil
}

// stringValue returns a JSON string, or "" for null, numbers and anything else
func stringValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// UnmarshalJSON tolerates missing fields and loosely typed ratings
func (h *Health) UnmarshalJSON(data []byte) error {
	var wire struct {
		Verdict json.RawMessage `json:"verdict"`
		Reason  json.RawMessage `json:"reason"`
		Rating  json.RawMessage `json:"rating"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	h.Verdict = stringValue(wire.Verdict)
	h.Reason = stringValue(wire.Reason)
	h.Rating = parseRating(wire.Rating)
	return nil
}

// UnmarshalJSON tolerates missing fields and loosely typed values
func (r *EnrichmentRecord) UnmarshalJSON(data []byte) error {
	var wire struct {
		Ingredient      json.RawMessage `json:"ingredient"`
		Usage           json.RawMessage `json:"usage"`
		Health          json.RawMessage `json:"health"`
		BannedCountries StringList      `json:"banned_countries"`
		RawAIResponse   json.RawMessage `json:"raw_ai_response"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	r.Ingredient = stringValue(wire.Ingredient)
	r.Usage = stringValue(wire.Usage)
	r.BannedCountries = wire.BannedCountries
	r.Health = Health{}
	if len(wire.Health) > 0 {
		// A health value that is not an object is treated as missing
		_ = json.Unmarshal(wire.Health, &r.Health)
	}
	r.RawAIResponse = nil
	if raw := stringValue(wire.RawAIResponse); raw != "" {
		r.RawAIResponse = &raw
	}
	return nil
}

// UnmarshalJSON accepts the field aliases the analyzer model is known to produce
func (a *AnalysisResult) UnmarshalJSON(data []byte) error {
	var wire struct {
		Ingredient  json.RawMessage `json:"ingredient"`
		Description json.RawMessage `json:"description"`
		Healthy     json.RawMessage `json:"healthy"`
		Safe        json.RawMessage `json:"safe"`
		Reason      json.RawMessage `json:"reason"`
		Explanation json.RawMessage `json:"explanation"`
		BannedIn    StringList      `json:"banned_in"`
		Banned      StringList      `json:"banned"`
		Rating      json.RawMessage `json:"rating"`
		RawOutput   json.RawMessage `json:"raw_output"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	a.Ingredient = stringValue(wire.Ingredient)
	a.Description = stringValue(wire.Description)
	a.Healthy = firstNonEmpty(stringValue(wire.Healthy), stringValue(wire.Safe))
	a.Reason = firstNonEmpty(stringValue(wire.Reason), stringValue(wire.Explanation))
	a.BannedIn = wire.BannedIn
	if len(a.BannedIn) == 0 {
		a.BannedIn = wire.Banned
	}
	a.Rating = parseRating(wire.Rating)
	a.RawOutput = nil
	if raw := stringValue(wire.RawOutput); raw != "" {
		a.RawOutput = &raw
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
