package blog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed meta.schema.json
var metaSchemaJSON []byte

const metaSchemaURL = "meta.schema.json"

// metaSchema is compiled once; the schema is part of the binary so a
// compile failure is a programming error.
var metaSchema = mustCompileMetaSchema()

func mustCompileMetaSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(metaSchemaURL, bytes.NewReader(metaSchemaJSON)); err != nil {
		panic(fmt.Sprintf("blog: invalid meta schema: %v", err))
	}
	return compiler.MustCompile(metaSchemaURL)
}

// rawMeta mirrors meta.json before the date is parsed.
type rawMeta struct {
	Title        string   `json:"title"`
	RelativeURL  string   `json:"relativeUrl"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	Technologies []int    `json:"technologies"`
	Date         string   `json:"date"`
	Image        string   `json:"image"`
}

// validateMeta checks data against the meta.json schema.
func validateMeta(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	return metaSchema.Validate(doc)
}
