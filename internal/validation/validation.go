package validation

import (
	"user-pref-service/internal/domain/event"
	"user-pref-service/internal/domain/user"
	"user-pref-service/pkg/schema"
)

// New returns the schema validator with every domain enum and pattern registered as a tag.
func New() *schema.Validator {
	return schema.New(
		schema.EnumRule("theme", user.Themes),
		schema.EnumRule("doctype", user.DocTypes),
		schema.EnumRule("order", user.Orders),
		schema.EnumRule("sortfield", user.SortFields),
		schema.EnumRule("event", event.Types),
		schema.PatternRule("fu", user.FUPattern, "must be two uppercase letters"),
	)
}
