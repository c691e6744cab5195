package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qualixa/qualixa/internal/storage"
)

var validMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true,
	"DELETE": true, "HEAD": true, "OPTIONS": true,
}

func validateEndpoint(e *storage.Endpoint) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(e.Name) > 255 {
		return fmt.Errorf("name must be at most 255 characters")
	}
	if strings.TrimSpace(e.BaseURL) == "" {
		return fmt.Errorf("base_url is required")
	}
	if len(e.BaseURL) > 2048 {
		return fmt.Errorf("base_url must be at most 2048 characters")
	}
	if len(e.Path) > 2048 {
		return fmt.Errorf("path must be at most 2048 characters")
	}
	if !validMethods[strings.ToUpper(e.Method)] {
		return fmt.Errorf("method must be one of: GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS")
	}

	if len(e.Headers) > 0 && string(e.Headers) != "{}" {
		var h map[string]string
		if err := json.Unmarshal(e.Headers, &h); err != nil {
			return fmt.Errorf("headers must be a JSON object of string values")
		}
	}

	return nil
}

func validateTestPlan(tp *storage.TestPlan) error {
	if strings.TrimSpace(tp.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(tp.Name) > 255 {
		return fmt.Errorf("name must be at most 255 characters")
	}
	return nil
}

func validateExecuteRequest(req *executeRequest) error {
	if req.EndpointID == 0 {
		return fmt.Errorf("endpointId is required")
	}
	if strings.TrimSpace(req.BaseURL) == "" {
		return fmt.Errorf("baseUrl is required")
	}
	if strings.TrimSpace(req.Method) == "" {
		return fmt.Errorf("method is required")
	}
	if strings.TrimSpace(req.Path) == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}
