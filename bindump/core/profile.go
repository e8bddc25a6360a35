package core

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"
)

// TOML is a kong configuration loader for profile files. Top-level keys set
// global flags; the tables [asn1] and [cbor] set the flags of the matching
// subcommand and take precedence over top-level keys. Keys may be written
// with dashes or underscores:
//
//	verbose = true
//
//	[asn1]
//	max_level = 5
//	pure = true
func TOML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if _, err := toml.NewDecoder(r).Decode(&values); err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	var f kong.ResolverFunc = func(_ *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		if parent != nil && parent.Command != nil {
			if table, ok := values[parent.Command.Name].(map[string]any); ok {
				if v, ok := lookup(table, flag.Name); ok {
					return v, nil
				}
			}
		}
		v, _ := lookup(values, flag.Name)
		if _, ok := v.(map[string]any); ok {
			return nil, nil
		}
		return v, nil
	}
	return f, nil
}

func lookup(m map[string]any, name string) (any, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	v, ok := m[strings.ReplaceAll(name, "-", "_")]
	return v, ok
}
