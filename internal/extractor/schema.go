package extractor

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const quizSchemaURL = "schema://quiz-items.json"

// quizSchemaJSON describes the array the model is asked to return.
// Option count is left open here; four options is checked by Inspect.
const quizSchemaJSON = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["question", "options", "answer"],
    "properties": {
      "question": {"type": "string"},
      "options": {
        "type": "array",
        "minItems": 2,
        "items": {"type": "string"}
      },
      "answer": {"type": "string"}
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func quizSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(quizSchemaJSON), &def); err != nil {
			schemaErr = fmt.Errorf("parse quiz schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(quizSchemaURL, def); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(quizSchemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile quiz schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}
