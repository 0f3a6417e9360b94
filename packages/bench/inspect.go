package bench

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/mcbench/packages/logging"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

// identityFields are the model card fields logged for each response.
var identityFields = []string{"id", "name", "version"}

// Inspection is what the inspector learned about one response body.
type Inspection struct {
	JSON         bool
	Identity     map[string]string
	SchemaErrors []string
}

// Valid reports whether the body passed schema validation (or no schema was set).
func (i *Inspection) Valid() bool {
	return len(i.SchemaErrors) == 0
}

// Inspector reads a response body back from its buffer and reports on it.
// It never changes the recorded measurements.
type Inspector struct {
	schema *gojsonschema.Schema
}

// NewInspector creates an inspector. schemaPath may be empty.
func NewInspector(schemaPath string) (*Inspector, error) {
	in := &Inspector{}
	if schemaPath == "" {
		return in, nil
	}

	abs, err := filepath.Abs(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("resolving schema path: %w", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", schemaPath, err)
	}
	in.schema = schema
	return in, nil
}

// Inspect rewinds body and checks its contents.
func (in *Inspector) Inspect(ctx context.Context, seq int, body io.ReadSeeker) (*Inspection, error) {
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding response buffer: %w", err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading response buffer: %w", err)
	}

	logger := logging.FromContext(ctx).With(zap.Int("request", seq))
	result := &Inspection{Identity: make(map[string]string)}

	if !gjson.ValidBytes(data) {
		logger.Debug("response body is not JSON", zap.Int("bytes", len(data)))
		if in.schema != nil {
			result.SchemaErrors = []string{"response body is not valid JSON"}
			logger.Warn("model card failed schema validation", zap.Strings("errors", result.SchemaErrors))
		}
		return result, nil
	}
	result.JSON = true

	parsed := gjson.ParseBytes(data)
	fields := make([]zap.Field, 0, len(identityFields))
	for _, name := range identityFields {
		if v := parsed.Get(name); v.Exists() {
			result.Identity[name] = v.String()
			fields = append(fields, zap.String(name, v.String()))
		}
	}
	logger.Debug("model card received", fields...)

	if in.schema == nil {
		return result, nil
	}

	validation, err := in.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validating response: %w", err)
	}
	for _, e := range validation.Errors() {
		result.SchemaErrors = append(result.SchemaErrors, e.String())
	}
	if !validation.Valid() {
		logger.Warn("model card failed schema validation", zap.Strings("errors", result.SchemaErrors))
	}

	return result, nil
}
