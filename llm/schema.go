package llm

import (
	"encoding/json"
	"reflect"
	"sync"

	"github.com/invopop/jsonschema"
)

var schemaCache sync.Map // reflect.Type -> map[string]any

// SchemaFor returns the strict JSON schema and name of the value out points to.
func SchemaFor(out any) (string, map[string]any, error) {
	t := reflect.TypeOf(out)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if cached, ok := schemaCache.Load(t); ok {
		return t.Name(), cached.(map[string]any), nil
	}

	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}
	schema := reflector.ReflectFromType(t)

	b, err := json.Marshal(schema)
	if err != nil {
		return "", nil, err
	}
	var result map[string]any
	if err := json.Unmarshal(b, &result); err != nil {
		return "", nil, err
	}
	delete(result, "$schema")

	schemaCache.Store(t, result)
	return t.Name(), result, nil
}
