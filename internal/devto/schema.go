package devto

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const articleListSchemaURL = "https://devtoy.local/schemas/published-articles.json"

// articleListSchema covers only the fields the export consumes
const articleListSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["slug", "body_markdown"],
    "properties": {
      "slug": {"type": "string", "minLength": 1},
      "body_markdown": {"type": "string"}
    }
  }
}`

var compileArticleList = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(articleListSchema))
	if err != nil {
		return nil, err
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(articleListSchemaURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(articleListSchemaURL)
})

// ValidateArticleList checks that body is a JSON array of articles carrying a slug and markdown body
func ValidateArticleList(body []byte) error {
	schema, err := compileArticleList()
	if err != nil {
		return fmt.Errorf("failed to compile article schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("unexpected article list payload: %w", err)
	}
	return nil
}
