package probe

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Request describes the single outbound call a probe makes.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte // nil when no body is attached
}

// Result captures the outcome of one dispatch. Status 0 means the
// request never completed (DNS, connect, TLS or timeout failure); in
// that case Body holds the failure message.
type Result struct {
	Status    int
	Headers   map[string]string // lower-cased names
	Body      string
	ElapsedMs int64
}

// Failed reports whether the dispatch ended in a transport failure.
func (r *Result) Failed() bool { return r.Status == 0 }

// BuildRequest assembles a dispatch-ready Request. The URL is baseURL
// and path concatenated verbatim; malformed URLs are not rejected here
// and surface later as transport failures. Caller headers are merged
// over a default Content-Type and win on collision. A body is attached
// only for POST, PUT and PATCH; for other verbs a supplied body is
// dropped.
func BuildRequest(method, baseURL, path string, headers map[string]string, body json.RawMessage) Request {
	merged := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		merged[k] = v
	}

	req := Request{
		Method:  strings.ToUpper(method),
		URL:     baseURL + path,
		Headers: merged,
	}

	switch req.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		req.Body = encodeBody(body)
	}
	return req
}

// encodeBody returns the wire form of the caller-supplied body: a JSON
// string is unwrapped and sent raw, anything else is forwarded as the
// JSON it was submitted as.
func encodeBody(body json.RawMessage) []byte {
	if len(body) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return []byte(s)
	}
	return []byte(body)
}
