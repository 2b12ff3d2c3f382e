package domain

import "strings"

// Fallback display values for records with missing fields
const (
	UnknownValue = "Unknown"
	NoneValue    = "None"
)

// IngredientSet is an ordered list of unique ingredient names.
// Order is first occurrence; uniqueness is exact string match.
type IngredientSet []string

// Contains reports whether name is in the set (exact match)
func (s IngredientSet) Contains(name string) bool {
	for _, n := range s {
		if n == name {
			return true
		}
	}
	return false
}

// Health holds the health verdict for a single ingredient
type Health struct {
	Verdict string `json:"verdict"`
	Reason  string `json:"reason,omitempty"`
	Rating  *int   `json:"rating,omitempty"`
}

// EnrichmentRecord is the per-ingredient annotation returned by the enrichment service
type EnrichmentRecord struct {
	Ingredient      string     `json:"ingredient"`
	Usage           string     `json:"usage"`
	Health          Health     `json:"health"`
	BannedCountries StringList `json:"banned_countries"`
	RawAIResponse   *string    `json:"raw_ai_response,omitempty"`
}

// DisplayName returns the ingredient name or Unknown
func (r EnrichmentRecord) DisplayName() string {
	return orUnknown(r.Ingredient)
}

// DisplayUsage returns the usage description or Unknown
func (r EnrichmentRecord) DisplayUsage() string {
	return orUnknown(r.Usage)
}

// DisplayVerdict returns the health verdict or Unknown
func (r EnrichmentRecord) DisplayVerdict() string {
	return orUnknown(r.Health.Verdict)
}

// DisplayReason returns the verdict reason or None
func (r EnrichmentRecord) DisplayReason() string {
	if strings.TrimSpace(r.Health.Reason) == "" {
		return NoneValue
	}
	return r.Health.Reason
}

// DisplayBanned returns the comma-joined ban list or None
func (r EnrichmentRecord) DisplayBanned() string {
	var countries []string
	for _, c := range r.BannedCountries {
		if c = strings.TrimSpace(c); c != "" {
			countries = append(countries, c)
		}
	}
	if len(countries) == 0 {
		return NoneValue
	}
	return strings.Join(countries, ", ")
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return UnknownValue
	}
	return s
}

// ProcessRequest is the body sent to POST /process_ingredients
type ProcessRequest struct {
	Ingredients IngredientSet `json:"ingredients"`
}

// ProcessResponse is the body returned by POST /process_ingredients
type ProcessResponse struct {
	Results []EnrichmentRecord `json:"results"`
}

// AnalysisResult is a single record returned by the upstream ingredient analyzer
type AnalysisResult struct {
	Ingredient  string     `json:"ingredient"`
	Description string     `json:"description"`
	Healthy     string     `json:"healthy"`
	Reason      string     `json:"reason"`
	BannedIn    StringList `json:"banned_in"`
	Rating      *int       `json:"rating"`
	RawOutput   *string    `json:"raw_output"`
}
