// Package config loads service configuration from the process environment.
package config

import (
	"fmt"
	"reflect"

	"github.com/caarlos0/env/v10"
	"golang.org/x/text/language"
)

// Option adjusts how Parse reads the environment.
type Option func(*env.Options)

// WithPrefix looks every variable up with prefix prepended.
func WithPrefix(prefix string) Option {
	return func(o *env.Options) { o.Prefix = prefix }
}

// WithEnvironment reads from vars instead of the process environment.
func WithEnvironment(vars map[string]string) Option {
	return func(o *env.Options) { o.Environment = vars }
}

// Parse builds a T from the variables named by its `env` tags, applying
// `envDefault` for unset ones. Besides the types env handles natively,
// fields of type language.Tag are parsed as BCP 47 tags.
//
//	type Config struct {
//	    HTTPPort int          `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`
//	    Locale   language.Tag `env:"CATALOGUE_LOCALE" envDefault:"en"`
//	}
func Parse[T any](opts ...Option) (T, error) {
	o := env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(language.Tag{}): parseLanguageTag,
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	var cfg T
	if err := env.ParseWithOptions(&cfg, o); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func parseLanguageTag(v string) (any, error) {
	tag, err := language.Parse(v)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", v, err)
	}
	return tag, nil
}
