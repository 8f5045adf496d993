package ir

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	NetworkError    ErrorCode = "NetworkError"
	ParseError      ErrorCode = "ParseError"
	ConversionError ErrorCode = "ConversionError"
)

// LoadError is a structured loader error with an optional source location.
type LoadError struct {
	Code     ErrorCode
	Message  string
	Location string
	Cause    error
}

func (e *LoadError) Error() string { return e.Message }
func (e *LoadError) Unwrap() error { return e.Cause }

// Settings configures loader behavior for remote inputs.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option            { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }

// Load reads a service description and returns the Service IR. The input may
// be a filesystem path or an http/https URL. Both native sdkgen service
// documents (YAML or JSON with a top-level "service" key) and OpenAPI
// documents are accepted; Swagger 2.0 inputs are converted to v3 before
// import.
func Load(ctx context.Context, input string, opts ...Option) (*Service, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &LoadError{Code: InputError, Message: "ir: input is empty"}
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	raw, location, err := readInput(ctx, input, settings)
	if err != nil {
		return nil, err
	}
	return Parse(ctx, raw, location)
}

// Parse materializes a Service from raw document bytes. location is used in
// error messages only.
func Parse(ctx context.Context, raw []byte, location string) (*Service, error) {
	kind, err := detectDocumentKind(raw)
	if err != nil {
		return nil, &LoadError{Code: ParseError, Message: err.Error(), Location: location, Cause: err}
	}

	switch kind {
	case kindNative:
		svc, err := parseNative(raw)
		if err != nil {
			return nil, &LoadError{Code: ParseError, Message: fmt.Sprintf("ir: parse service document: %v", err), Location: location, Cause: err}
		}
		return svc, nil
	case kindOpenAPI3:
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(raw)
		if err != nil {
			return nil, &LoadError{Code: ParseError, Message: fmt.Sprintf("ir: parse openapi document: %v", err), Location: location, Cause: err}
		}
		return FromOpenAPI(ctx, doc)
	case kindSwagger2:
		var v2 openapi2.T
		if err := yaml.Unmarshal(raw, &v2); err != nil {
			return nil, &LoadError{Code: ParseError, Message: fmt.Sprintf("ir: parse swagger document: %v", err), Location: location, Cause: err}
		}
		doc, err := openapi2conv.ToV3(&v2)
		if err != nil {
			return nil, &LoadError{Code: ConversionError, Message: fmt.Sprintf("ir: convert v2 to v3: %v", err), Location: location, Cause: err}
		}
		return FromOpenAPI(ctx, doc)
	default:
		return nil, &LoadError{Code: ParseError, Message: "ir: unknown document kind (expected a service document or an OpenAPI/Swagger spec)", Location: location}
	}
}

func readInput(ctx context.Context, input string, settings Settings) ([]byte, string, error) {
	u, uerr := url.Parse(input)
	isURL := uerr == nil && u.Scheme != "" && u.Host != ""

	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme != "http" && scheme != "https" {
			return nil, "", &LoadError{Code: InputError, Message: fmt.Sprintf("ir: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		raw, err := fetchWithRetry(ctx, input, settings)
		if err != nil {
			return nil, "", &LoadError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
		}
		return raw, input, nil
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, "", &LoadError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, "", &LoadError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
	}
	return raw, abs, nil
}

type documentKind int

const (
	kindUnknown documentKind = iota
	kindNative
	kindOpenAPI3
	kindSwagger2
)

// detectDocumentKind inspects the top-level keys to classify the input.
func detectDocumentKind(data []byte) (documentKind, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return kindUnknown, fmt.Errorf("parse document: %w", err)
	}
	if _, ok := root["service"]; ok {
		return kindNative, nil
	}
	if v, ok := root["openapi"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
			return kindOpenAPI3, nil
		}
	}
	if v, ok := root["swagger"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "2.") {
			return kindSwagger2, nil
		}
	}
	return kindUnknown, nil
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err == nil && resp.StatusCode < 300 {
			defer resp.Body.Close()
			return io.ReadAll(resp.Body)
		}
		if err != nil {
			lastErr = err
		} else {
			defer resp.Body.Close()
			if resp.StatusCode >= 500 || resp.StatusCode == 429 {
				lastErr = fmt.Errorf("transient http error %d", resp.StatusCode)
			} else {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
				return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}
