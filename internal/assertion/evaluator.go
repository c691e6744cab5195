package assertion

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Evaluate runs every spec against the captured response, in input
// order, and reports whether all of them passed. A failing assertion
// does not stop evaluation of the rest. An empty spec list passes
// vacuously.
func Evaluate(specs []Spec, statusCode int, headers map[string]string, body string, elapsedMs int64) ([]Result, bool) {
	results := make([]Result, 0, len(specs))
	allPassed := true
	for _, sp := range specs {
		r := evaluateSingle(sp, statusCode, headers, body, elapsedMs)
		if !r.Passed {
			allPassed = false
		}
		results = append(results, r)
	}
	return results, allPassed
}

func evaluateSingle(sp Spec, statusCode int, headers map[string]string, body string, elapsedMs int64) Result {
	switch sp.Kind {
	case KindStatus:
		return evalStatus(sp, statusCode)
	case KindBodyContains:
		return evalBodyContains(sp, body)
	case KindHeaderExists:
		return evalHeaderExists(sp, headers)
	case KindResponseTime:
		return evalResponseTime(sp, elapsedMs)
	case KindJSONPath:
		return evalJSONPath(sp, body)
	default:
		// Fail closed: a kind this build does not know cannot pass.
		return Result{Description: describe(sp), Passed: false}
	}
}

func describe(sp Spec) string {
	if sp.Description != "" {
		return sp.Description
	}
	return fmt.Sprintf("%s: %s", sp.Kind, sp.Expected)
}

func evalStatus(sp Spec, statusCode int) Result {
	expected, err := strconv.Atoi(strings.TrimSpace(sp.Expected))
	return Result{
		Description: describe(sp),
		Passed:      err == nil && statusCode == expected,
		Actual:      strconv.Itoa(statusCode),
	}
}

func evalBodyContains(sp Spec, body string) Result {
	pass := strings.Contains(body, sp.Expected)
	return Result{
		Description: describe(sp),
		Passed:      pass,
		Actual:      strconv.FormatBool(pass),
	}
}

func evalHeaderExists(sp Spec, headers map[string]string) Result {
	_, exists := lookupHeader(headers, sp.Key)
	actual := "missing"
	if exists {
		actual = "exists"
	}
	return Result{Description: describe(sp), Passed: exists, Actual: actual}
}

// lookupHeader finds a header by name, case-insensitively.
func lookupHeader(headers map[string]string, name string) (string, bool) {
	if v, ok := headers[name]; ok {
		return v, true
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

func evalResponseTime(sp Spec, elapsedMs int64) Result {
	limit, err := strconv.ParseInt(strings.TrimSpace(sp.Expected), 10, 64)
	return Result{
		Description: describe(sp),
		Passed:      err == nil && elapsedMs <= limit,
		Actual:      strconv.FormatInt(elapsedMs, 10),
	}
}

func evalJSONPath(sp Spec, body string) Result {
	doc, ok := tryParseJSON(body)
	if !ok {
		return Result{Description: describe(sp), Passed: false, Actual: "Invalid JSON"}
	}
	val, ok := walkDotPath(doc, sp.Path)
	if !ok {
		return Result{Description: describe(sp), Passed: false}
	}
	actual := stringify(val)
	return Result{
		Description: describe(sp),
		Passed:      actual == sp.Expected,
		Actual:      actual,
	}
}

// tryParseJSON parses body as JSON, reporting failure instead of
// returning an error. It is called only by the json_path branch so
// non-JSON APIs pay nothing.
func tryParseJSON(body string) (any, bool) {
	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, false
	}
	return doc, true
}

// walkDotPath follows a dot-separated field path through a parsed JSON
// value. Array indexing is not supported; a missing key or a non-object
// encountered while segments remain resolves to not-found.
func walkDotPath(doc any, path string) (any, bool) {
	current := doc
	for _, part := range strings.Split(path, ".") {
		obj, isObj := current.(map[string]any)
		if !isObj {
			return nil, false
		}
		val, exists := obj[part]
		if !exists {
			return nil, false
		}
		current = val
	}
	return current, true
}

func stringify(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", v)
	}
}
