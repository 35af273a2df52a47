package storage

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const documentSchemaURL = "https://neptune.local/document.schema.json"

//go:embed schema/document.schema.json
var documentSchemaJSON []byte

var (
	schemaOnce     sync.Once
	documentSchema *jsonschema.Schema
	schemaErr      error
)

// SchemaIssue is one violation reported by ValidateJSON.
type SchemaIssue struct {
	Path    string
	Message string
}

func (i SchemaIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// SchemaError collects every violation found in a document.
type SchemaError struct {
	Issues []SchemaIssue
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return "storage: document does not match schema: " + strings.Join(parts, "; ")
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		if err := compiler.AddResource(documentSchemaURL, bytes.NewReader(documentSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("storage: add schema resource: %w", err)
			return
		}
		documentSchema, schemaErr = compiler.Compile(documentSchemaURL)
	})
	return documentSchema, schemaErr
}

// ValidateJSON checks raw document bytes against the embedded schema. Syntax
// errors are returned as is; schema violations as a *SchemaError.
func ValidateJSON(raw []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	var value any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return fmt.Errorf("storage: parse document: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		out := &SchemaError{}
		collectSchemaIssues(out, ve)
		return out
	}
	return nil
}

func collectSchemaIssues(out *SchemaError, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		out.Issues = append(out.Issues, SchemaIssue{Path: err.InstanceLocation, Message: err.Message})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaIssues(out, cause)
	}
}
