package assets

import _ "embed"

// ModelsData holds the raw JSON catalog of supported LLM providers and
// their model ids.
//
//go:embed models.json
var ModelsData []byte
