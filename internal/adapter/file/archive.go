package file

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/couchcryptid/dreamlight-etl/internal/domain"
)

// ReadArchive decodes the dream journal JSON export.
func ReadArchive(path string) (domain.Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Archive{}, err
	}
	var archive domain.Archive
	if err := json.Unmarshal(data, &archive); err != nil {
		return domain.Archive{}, fmt.Errorf("decode archive %s: %w", path, err)
	}
	return archive, nil
}

var (
	textType    = reflect.TypeFor[domain.Text]()
	emotionType = reflect.TypeFor[domain.EmotionScore]()
)

// ArchiveSchema returns the JSON Schema of the dream journal export. It
// documents the accepted shapes; nothing is validated against it.
func ArchiveSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
		Mapper:                     schemaFor,
	}
	schema := reflector.Reflect(&domain.Archive{})
	schema.Title = "Dream journal archive"
	return json.MarshalIndent(schema, "", "  ")
}

func schemaFor(t reflect.Type) *jsonschema.Schema {
	switch t {
	case textType:
		return &jsonschema.Schema{
			Description: "Scalar rendered as text; numbers and booleans keep their JSON spelling.",
			OneOf: []*jsonschema.Schema{
				{Type: "string"},
				{Type: "number"},
				{Type: "boolean"},
				{Type: "null"},
			},
		}
	case emotionType:
		pairLen := uint64(2)
		return &jsonschema.Schema{
			Description: "Emotion and score, as a [label, score] pair or a {label, score} object.",
			OneOf: []*jsonschema.Schema{
				{Type: "array", MinItems: &pairLen, MaxItems: &pairLen},
				{Type: "object", Required: []string{"label", "score"}},
			},
		}
	}
	return nil
}
