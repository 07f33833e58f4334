// Package swagger embeds the OpenAPI 2 document of the HTTP API.
package swagger

import _ "embed"

// Doc is the OpenAPI document served at /swagger/doc.json.
//
//go:embed swagger.json
var Doc []byte
