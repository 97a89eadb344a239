package shell

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
	"git.home.luguber.info/inful/seogen/internal/meta"
)

// Template is the read-only shell document shared by every page of a run.
// Render returns a new string and never touches the base, so it is safe for
// concurrent use.
type Template struct {
	base string
}

// Parse wraps s, failing when it has no </head> anchor.
func Parse(s string) (*Template, error) {
	if _, _, err := splitHead(s); err != nil {
		return nil, err
	}
	return &Template{base: s}, nil
}

// Load reads and parses the shell file at path.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryMalformedTemplate, "read shell document").
			WithContext("path", path).Fatal().UserAction().Build()
	}
	t, err := Parse(string(data))
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			return nil, ce.WithContext("path", path)
		}
		return nil, err
	}
	return t, nil
}

// Base returns the unmodified shell.
func (t *Template) Base() string { return t.base }

// Render applies set to a copy of the shell.
func (t *Template) Render(set meta.TagSet) (string, error) {
	return Apply(t.base, set)
}

// Apply runs every rule for set over base in order.
func Apply(base string, set meta.TagSet) (string, error) {
	if _, _, err := splitHead(base); err != nil {
		return "", err
	}
	rules, err := Rules(set)
	if err != nil {
		return "", err
	}
	doc := base
	for _, r := range rules {
		doc, err = r.Apply(doc)
		if err != nil {
			return "", fmt.Errorf("rule %s: %w", r.Name(), err)
		}
	}
	return doc, nil
}
