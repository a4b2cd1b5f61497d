package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"

	"github.com/openstat-dev/snatree/internal/model"
)

// Select evaluates a JSONPath expression against the JSON form of doc,
// e.g. `$[0].resources[*].code`.
func Select(doc *model.Document, expr string) (any, error) {
	var buf bytes.Buffer
	if err := encodeJSON(&buf, doc, 0); err != nil {
		return nil, err
	}
	var jobj any
	if err := json.Unmarshal(buf.Bytes(), &jobj); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	val, err := jsonpath.Get(expr, jobj)
	if err != nil {
		return nil, fmt.Errorf("evaluating %q: %w", expr, err)
	}
	return val, nil
}

// WriteSelection writes the result of Select as JSON.
func WriteSelection(w io.Writer, doc *model.Document, expr string, indent int) error {
	val, err := Select(doc, expr)
	if err != nil {
		return err
	}
	return encodeJSON(w, val, indent)
}
