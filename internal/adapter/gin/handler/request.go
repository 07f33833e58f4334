package handler

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"

	apperrors "user-pref-service/pkg/errors"
	"user-pref-service/pkg/schema"
)

const maxBodyBytes = 1 << 20

// decodeBody validates the JSON body merged with the path params against T.
// Bodies are strict: fields T does not declare fail validation.
func decodeBody[T any](c *gin.Context, v *schema.Validator) (T, error) {
	var zero T

	input := map[string]any{}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		return zero, apperrors.Contract("request body could not be read", apperrors.WithCause(err))
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&input); err != nil {
			return zero, apperrors.Contract("validation failed: body must be a valid JSON object",
				apperrors.WithDetails(map[string]string{"body": "invalid json"}),
				apperrors.WithCause(err))
		}
	}

	for _, p := range c.Params {
		input[p.Key] = p.Value
	}
	return schema.Decode[T](v, input, schema.Options{})
}

// decodeQuery validates the query string merged with the path params against T.
// Unknown query parameters are ignored.
func decodeQuery[T any](c *gin.Context, v *schema.Validator) (T, error) {
	input := map[string]any{}
	for k, vs := range c.Request.URL.Query() {
		if len(vs) > 0 {
			input[k] = vs[len(vs)-1]
		}
	}
	for _, p := range c.Params {
		input[p.Key] = p.Value
	}
	return schema.Decode[T](v, input, schema.Options{StripUnknown: true})
}
