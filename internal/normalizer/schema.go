package normalizer

import (
	_ "embed"
	"fmt"

	"profileimport/internal/model"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed canonical_profile.schema.json
var canonicalSchema []byte

// schemaWarnings validates the assembled profile against the canonical JSON
// schema. Findings are advisory: they flow into the audit payload but never
// reject a profile that passed the identity gate.
func schemaWarnings(profile *model.CanonicalProfile) []string {
	schemaLoader := gojsonschema.NewBytesLoader(canonicalSchema)
	docLoader := gojsonschema.NewGoLoader(profile)

	res, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return []string{fmt.Sprintf("schema check unavailable: %v", err)}
	}
	var out []string
	for _, e := range res.Errors() {
		out = append(out, "schema: "+e.String())
	}
	return out
}
