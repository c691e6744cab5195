package assertion

// Kind identifies a supported assertion type. The set is closed: an
// unrecognized kind evaluates to a failed result, never a silent pass.
type Kind string

const (
	KindStatus       Kind = "status"
	KindBodyContains Kind = "body_contains"
	KindHeaderExists Kind = "header_exists"
	KindResponseTime Kind = "response_time"
	KindJSONPath     Kind = "json_path"
)

// Spec is a declarative check to run against a probe response.
// Only the fields relevant to Kind are consulted.
type Spec struct {
	Kind        Kind   `json:"kind"`
	Expected    string `json:"expected"`              // numeric for status/response_time, substring for body_contains, string equality for json_path
	Key         string `json:"key,omitempty"`         // header name, header_exists only
	Path        string `json:"path,omitempty"`        // dot-separated field path, json_path only
	Description string `json:"description,omitempty"` // synthesized as "{kind}: {expected}" when empty
}

// Result holds the outcome of evaluating a single Spec.
type Result struct {
	Description string `json:"description"`
	Passed      bool   `json:"passed"`
	Actual      string `json:"actual,omitempty"`
}
