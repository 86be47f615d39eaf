package questionbank

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// documentSchema accepts either a bare list of records or an object with a
// questions list. Only the shape is checked; record fields are decoded one by
// one so a bad record is skipped instead of rejecting the document.
const documentSchema = `{
	"$defs": {
		"questions": {
			"type": "array",
			"items": {"type": "object"}
		}
	},
	"oneOf": [
		{"$ref": "#/$defs/questions"},
		{
			"type": "object",
			"properties": {
				"quizId": {"type": "string"},
				"questions": {"$ref": "#/$defs/questions"}
			},
			"required": ["questions"]
		}
	]
}`

const documentSchemaURL = "schema://questionbank/document.json"

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func documentValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(documentSchema), &def); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(documentSchemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(documentSchemaURL)
	})
	return compiledSchema, compileErr
}

type jsonDocument struct {
	QuizID    string            `json:"quizId"`
	Questions []json.RawMessage `json:"questions"`
}

// ParseJSON parses a question document: either `[{id?, jp, en}, ...]` or
// `{"quizId": "...", "questions": [...]}`.
func ParseJSON(data []byte, opts ParseOptions) (*Bank, error) {
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	validator, err := documentValidator()
	if err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}
	if err := validator.Validate(parsed); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var doc jsonDocument
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		if err := json.Unmarshal(data, &doc.Questions); err != nil {
			return nil, fmt.Errorf("decode question list: %w", err)
		}
	} else if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode question document: %w", err)
	}

	records := make([]record, len(doc.Questions))
	for i, raw := range doc.Questions {
		records[i] = decodeJSONRecord(raw, i+1)
	}

	questions, issues := normalize(records, opts)
	return &Bank{
		QuizID:    doc.QuizID,
		Namespace: namespaceFor(doc.QuizID, opts),
		Questions: questions,
		Issues:    issues,
	}, nil
}

// decodeJSONRecord reads one record. A null or absent id counts as missing;
// an id that is not a non-negative integer or text that is not a string
// marks the record malformed.
func decodeJSONRecord(raw json.RawMessage, pos int) record {
	r := record{Position: pos}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		r.Err = fmt.Errorf("%w: %v", ErrMalformed, err)
		return r
	}

	if v, ok := fields["id"]; ok && !isJSONNull(v) {
		var id int
		if err := json.Unmarshal(v, &id); err != nil || id < 0 {
			r.Err = fmt.Errorf("%w: id %s is not a non-negative integer", ErrMalformed, v)
			return r
		}
		r.ID = &id
	}

	var err error
	if r.Prompt, err = jsonText(fields, "jp"); err != nil {
		r.Err = err
		return r
	}
	if r.Answer, err = jsonText(fields, "en"); err != nil {
		r.Err = err
	}
	return r
}

// jsonText returns a string field; absent and null read as empty.
func jsonText(fields map[string]json.RawMessage, name string) (string, error) {
	v, ok := fields[name]
	if !ok || isJSONNull(v) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", fmt.Errorf("%w: %s %s is not a string", ErrMalformed, name, v)
	}
	return s, nil
}

func isJSONNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
