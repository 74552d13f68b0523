package policy

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidName = errors.New("invalid counter name")

// DefaultPattern accepts any single path segment.
const DefaultPattern = `^[^/]+$`

type Config struct {
	Names NameRules `mapstructure:"names"`
}

type NameRules struct {
	MaxLength int      `mapstructure:"max_length"`
	Pattern   string   `mapstructure:"pattern"`
	Reserved  []string `mapstructure:"reserved"`
}

// Default returns the policy used when no policy file is configured: any
// non-empty name without a slash, of any length.
func Default() Config {
	return Config{
		Names: NameRules{
			Pattern: DefaultPattern,
		},
	}
}

// Validator checks counter names against a compiled policy. It is immutable
// and safe for concurrent use.
type Validator struct {
	maxLength int
	pattern   *regexp.Regexp
	reserved  map[string]bool
}

// New compiles a policy. A zero max length means no length limit and an empty
// pattern falls back to DefaultPattern.
func New(cfg Config) (*Validator, error) {
	rules := cfg.Names

	if rules.MaxLength < 0 {
		return nil, errors.Errorf("invalid max name length (%d)", rules.MaxLength)
	}
	if rules.Pattern == "" {
		rules.Pattern = DefaultPattern
	}
	pattern, err := regexp.Compile(rules.Pattern)
	if err != nil {
		return nil, errors.Wrap(err, "invalid name pattern")
	}

	reserved := make(map[string]bool, len(rules.Reserved))
	for i, name := range rules.Reserved {
		if strings.TrimSpace(name) == "" {
			return nil, errors.Errorf("empty reserved name (%d)", i)
		}
		reserved[name] = true
	}

	return &Validator{
		maxLength: rules.MaxLength,
		pattern:   pattern,
		reserved:  reserved,
	}, nil
}

// MustDefault returns a validator for the default policy
func MustDefault() *Validator {
	v, err := New(Default())
	if err != nil {
		panic(err)
	}
	return v
}

func (v *Validator) ValidateName(name string) error {
	if name == "" {
		return errors.Wrap(ErrInvalidName, "empty name")
	}

	if v.maxLength > 0 && len(name) > v.maxLength {
		return errors.Wrapf(ErrInvalidName, "name longer than %d characters", v.maxLength)
	}

	if !v.pattern.MatchString(name) {
		return errors.Wrapf(ErrInvalidName, "name does not match %s", v.pattern)
	}

	if v.reserved[name] {
		return errors.Wrapf(ErrInvalidName, "name %q is reserved", name)
	}

	return nil
}
