package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-folio/internal/store"
)

// ErrPayloadInvalid reports a record that failed boundary validation for its
// collection.
var ErrPayloadInvalid = errors.New("registry: payload validation failed")

// ValidationIssue captures a single validation failure.
type ValidationIssue struct {
	Location string
	Message  string
}

// PayloadValidationError surfaces validation issues with schema-aware context.
type PayloadValidationError struct {
	Collection string
	Issues     []ValidationIssue
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		return ErrPayloadInvalid.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return fmt.Sprintf("%s: %s", ErrPayloadInvalid.Error(), strings.Join(parts, "; "))
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrPayloadInvalid
}

// ValidateNew checks a full record payload against the collection schema
// before a create. Collections without a schema accept anything; the store
// never enforces shape, validation happens only at this boundary.
func ValidateNew(collection string, fields store.Fields) error {
	return validate(collection, fields, false)
}

// ValidatePartial checks a merge-update payload. Required fields are not
// enforced because merge updates only carry changed keys.
func ValidatePartial(collection string, fields store.Fields) error {
	return validate(collection, fields, true)
}

func validate(collection string, fields store.Fields, partial bool) error {
	schema := compiledSchema(collection, partial)
	if schema == nil {
		return nil
	}

	payload := map[string]any(store.CloneFields(fields))
	// Round-trip through JSON so typed values (ints, slices) take the shape
	// the schema validator expects.
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
	}
	var decoded any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
	}

	if err := schema.Validate(decoded); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return &PayloadValidationError{
				Collection: collection,
				Issues:     collectIssues(validationErr),
			}
		}
		return fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
	}
	return nil
}

func collectIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	var issues []ValidationIssue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: node.InstanceLocation,
				Message:  node.Message,
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}

var (
	schemaOnce sync.Once
	fullSchema map[string]*jsonschema.Schema
	softSchema map[string]*jsonschema.Schema
)

func compiledSchema(collection string, partial bool) *jsonschema.Schema {
	schemaOnce.Do(compileAll)
	if partial {
		return softSchema[collection]
	}
	return fullSchema[collection]
}

func compileAll() {
	fullSchema = make(map[string]*jsonschema.Schema, len(collectionSchemas))
	softSchema = make(map[string]*jsonschema.Schema, len(collectionSchemas))
	for name, raw := range collectionSchemas {
		if compiled, err := compileSchema(raw); err == nil {
			fullSchema[name] = compiled
		}
		relaxed := cloneSchema(raw)
		delete(relaxed, "required")
		if compiled, err := compileSchema(relaxed); err == nil {
			softSchema[name] = compiled
		}
	}
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

func cloneSchema(schema map[string]any) map[string]any {
	out := make(map[string]any, len(schema))
	for k, v := range schema {
		out[k] = v
	}
	return out
}

// collectionSchemas document the expected shape per kind. They stay
// permissive about extra keys; records gained fields organically in the
// source system and the registry does not rewrite history.
var collectionSchemas = map[string]map[string]any{
	CollectionBlogs: {
		"type":     "object",
		"required": []any{"title"},
		"properties": map[string]any{
			"title":       map[string]any{"type": "string", "minLength": 1},
			"slug":        map[string]any{"type": "string"},
			"content":     map[string]any{"type": "string"},
			"contentRaw":  map[string]any{"type": "string"},
			"excerpt":     map[string]any{"type": "string"},
			"coverImage":  map[string]any{"type": "string"},
			"tags":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"published":   map[string]any{"type": "boolean"},
			"readingTime": map[string]any{"type": "integer", "minimum": 0},
			"order":       map[string]any{"type": "integer"},
		},
		"additionalProperties": true,
	},
	CollectionResume: {
		"type":     "object",
		"required": []any{"fileUrl"},
		"properties": map[string]any{
			"label":    map[string]any{"type": "string"},
			"fileUrl":  map[string]any{"type": "string", "minLength": 1},
			"filePath": map[string]any{"type": "string"},
			"fileSize": map[string]any{"type": "integer", "minimum": 0},
			"isActive": map[string]any{"type": "boolean"},
		},
		"additionalProperties": true,
	},
	CollectionProjects: {
		"type":     "object",
		"required": []any{"title"},
		"properties": map[string]any{
			"title":       map[string]any{"type": "string", "minLength": 1},
			"description": map[string]any{"type": "string"},
			"coverImage":  map[string]any{"type": "string"},
			"tags":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"liveUrl":     map[string]any{"type": "string"},
			"repoUrl":     map[string]any{"type": "string"},
			"featured":    map[string]any{"type": "boolean"},
			"order":       map[string]any{"type": "integer"},
		},
		"additionalProperties": true,
	},
	CollectionSkills: {
		"type":     "object",
		"required": []any{"name"},
		"properties": map[string]any{
			"name":     map[string]any{"type": "string", "minLength": 1},
			"category": map[string]any{"type": "string"},
			"level":    map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			"icon":     map[string]any{"type": "string"},
			"order":    map[string]any{"type": "integer"},
		},
		"additionalProperties": true,
	},
	CollectionEducation: {
		"type":     "object",
		"required": []any{"institution"},
		"properties": map[string]any{
			"institution": map[string]any{"type": "string", "minLength": 1},
			"degree":      map[string]any{"type": "string"},
			"field":       map[string]any{"type": "string"},
			"startYear":   map[string]any{"type": "integer"},
			"endYear":     map[string]any{"type": "integer"},
			"description": map[string]any{"type": "string"},
			"order":       map[string]any{"type": "integer"},
		},
		"additionalProperties": true,
	},
	CollectionExperience: {
		"type":     "object",
		"required": []any{"company"},
		"properties": map[string]any{
			"company":     map[string]any{"type": "string", "minLength": 1},
			"title":       map[string]any{"type": "string"},
			"location":    map[string]any{"type": "string"},
			"startDate":   map[string]any{"type": "string"},
			"endDate":     map[string]any{"type": "string"},
			"current":     map[string]any{"type": "boolean"},
			"description": map[string]any{"type": "string"},
			"order":       map[string]any{"type": "integer"},
		},
		"additionalProperties": true,
	},
	CollectionTestimonials: {
		"type":     "object",
		"required": []any{"author", "quote"},
		"properties": map[string]any{
			"author":  map[string]any{"type": "string", "minLength": 1},
			"role":    map[string]any{"type": "string"},
			"company": map[string]any{"type": "string"},
			"quote":   map[string]any{"type": "string", "minLength": 1},
			"avatar":  map[string]any{"type": "string"},
			"order":   map[string]any{"type": "integer"},
		},
		"additionalProperties": true,
	},
	CollectionForms: {
		"type":     "object",
		"required": []any{"email", "message"},
		"properties": map[string]any{
			"name":    map[string]any{"type": "string"},
			"email":   map[string]any{"type": "string", "minLength": 3},
			"subject": map[string]any{"type": "string"},
			"message": map[string]any{"type": "string", "minLength": 1},
			"read":    map[string]any{"type": "boolean"},
		},
		"additionalProperties": true,
	},
	CollectionNewsletter: {
		"type":     "object",
		"required": []any{"email"},
		"properties": map[string]any{
			"email":      map[string]any{"type": "string", "minLength": 3},
			"subscribed": map[string]any{"type": "boolean"},
		},
		"additionalProperties": true,
	},
	CollectionAnalytics: {
		"type":     "object",
		"required": []any{"event"},
		"properties": map[string]any{
			"event": map[string]any{"type": "string", "minLength": 1},
			"path":  map[string]any{"type": "string"},
			"meta":  map[string]any{"type": "object", "additionalProperties": true},
		},
		"additionalProperties": true,
	},
}
