package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/simon020286/go-step-iterator/builder"
	"github.com/simon020286/go-step-iterator/config"
	"github.com/simon020286/go-step-iterator/models"
)

const defaultHTTPTimeout = 30 * time.Second

// HTTPClientStep performs one HTTP request on its own goroutine and
// completes through done
type HTTPClientStep struct {
	output
	urlSpec      config.ValueSpec
	methodSpec   config.ValueSpec
	headers      map[string]string
	bodySpec     config.ValueSpec
	contentType  string
	responseType string
	client       *http.Client
}

type HTTPClientResponse struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       any               `json:"body"`
}

func (s *HTTPClientStep) Run(ctx models.Context, done models.Done) {
	// Resolved on the caller's goroutine; only the request runs detached
	req, err := s.buildRequest(s.scope(ctx))
	if err != nil {
		done(err, nil)
		return
	}

	go func() {
		resp, err := s.do(req)
		if err != nil {
			done(err, nil)
			return
		}
		s.store(ctx, resp)
		done(nil, resp)
	}()
}

func (s *HTTPClientStep) buildRequest(scope config.Scope) (*http.Request, error) {
	urlResolved, err := s.urlSpec.Resolve(scope)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve URL: %w", err)
	}

	methodResolved, err := s.methodSpec.Resolve(scope)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve method: %w", err)
	}

	var bodyReader io.Reader
	if s.bodySpec != nil {
		bodyData, err := s.bodySpec.Resolve(scope)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve body: %w", err)
		}
		bodyBytes, err := serializeBody(bodyData, s.contentType)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(
		context.Background(),
		fmt.Sprintf("%v", methodResolved),
		fmt.Sprintf("%v", urlResolved),
		bodyReader,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	for key, value := range s.headers {
		req.Header.Set(key, value)
	}
	if bodyReader != nil && s.contentType != "" {
		req.Header.Set("Content-Type", s.contentType)
	}
	return req, nil
}

func (s *HTTPClientStep) do(req *http.Request) (*HTTPClientResponse, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	responseData := &HTTPClientResponse{
		StatusCode: resp.StatusCode,
		Headers:    make(map[string]string),
	}
	for key, values := range resp.Header {
		if len(values) > 0 {
			responseData.Headers[key] = values[0]
		}
	}

	switch s.responseType {
	case "json":
		var bodyData any
		if err := json.NewDecoder(resp.Body).Decode(&bodyData); err != nil {
			return nil, fmt.Errorf("failed to decode JSON response: %w", err)
		}
		responseData.Body = bodyData
	default:
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		responseData.Body = string(bodyBytes)
	}

	return responseData, nil
}

func serializeBody(body any, contentType string) ([]byte, error) {
	switch contentType {
	case "text/plain":
		return []byte(fmt.Sprintf("%v", body)), nil
	default:
		return json.Marshal(body)
	}
}

func init() {
	builder.RegisterStepType("http_client", func(def builder.Definition) (*models.Step, error) {
		cfg := def.Config

		urlSpec, err := builder.ValueConfig(cfg, "url")
		if err != nil {
			return nil, fmt.Errorf("http_client step: %w", err)
		}

		methodRaw, ok := cfg["method"]
		if !ok {
			methodRaw = http.MethodGet
		}

		headers, _ := cfg["headers"].(map[string]any)
		headersMap := make(map[string]string)
		for k, v := range headers {
			if strVal, ok := v.(string); ok {
				headersMap[k] = strVal
			}
		}

		responseType, ok := cfg["response"].(string)
		if !ok {
			responseType = "json"
		}

		contentType, ok := cfg["content_type"].(string)
		if !ok {
			contentType = "application/json"
		}

		timeout := defaultHTTPTimeout
		if ms, ok := cfg["timeout_ms"].(int); ok && ms > 0 {
			timeout = time.Duration(ms) * time.Millisecond
		}

		var bodySpec config.ValueSpec
		if bodyRaw, ok := cfg["body"]; ok && bodyRaw != nil {
			bodySpec = config.ParseValue(bodyRaw)
		}

		out, err := newOutput(cfg, def.Variables)
		if err != nil {
			return nil, err
		}

		s := &HTTPClientStep{
			output:       out,
			urlSpec:      urlSpec,
			methodSpec:   config.ParseValue(methodRaw),
			headers:      headersMap,
			bodySpec:     bodySpec,
			contentType:  contentType,
			responseType: responseType,
			client:       &http.Client{Timeout: timeout},
		}
		return models.Async(s.Run), nil
	})
}
