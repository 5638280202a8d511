package models

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// DefaultSearchLimit caps search results when the caller sets no limit.
const DefaultSearchLimit = 50

// SearchTable restricts a column search to one table.
// Host table nodes decode into it directly; extra fields are ignored.
type SearchTable struct {
	Schema string `mapstructure:"schema"`
	Label  string `mapstructure:"label"`
}

// SearchParams are the extra parameters of a search request.
type SearchParams struct {
	Search string        `mapstructure:"search"`
	Schema string        `mapstructure:"schema"`
	Tables []SearchTable `mapstructure:"tables"`
	Limit  int           `mapstructure:"limit"`
}

// DecodeSearchParams decodes host extra parameters. Numbers may arrive as
// JSON floats or strings.
func DecodeSearchParams(extra map[string]any) (SearchParams, error) {
	var params SearchParams
	if len(extra) == 0 {
		return params, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &params,
	})
	if err != nil {
		return params, fmt.Errorf("build search params decoder: %w", err)
	}
	if err := decoder.Decode(extra); err != nil {
		return params, fmt.Errorf("decode search params: %w", err)
	}
	return params, nil
}

// EffectiveLimit returns Limit, or fallback when Limit is not positive.
func (p SearchParams) EffectiveLimit(fallback int) int {
	if p.Limit > 0 {
		return p.Limit
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultSearchLimit
}
