package policy

import (
	"strings"
	"testing"

	"github.com/bmizerany/assert"
	"github.com/pkg/errors"
)

func BenchmarkValidateName(b *testing.B) {
	v := MustDefault()

	for i := 0; i < b.N; i++ {
		v.ValidateName("updateCounter")
	}
}

func TestValidateName(t *testing.T) {
	testCases := []struct {
		desc    string
		cfg     Config
		name    string
		invalid bool
	}{
		{
			desc: "default policy accepts plain name",
			cfg:  Default(),
			name: "foo",
		},
		{
			desc: "default policy accepts spaces",
			cfg:  Default(),
			name: "foo bar",
		},
		{
			desc: "default policy accepts non ascii",
			cfg:  Default(),
			name: "café",
		},
		{
			desc: "default policy accepts colons",
			cfg:  Default(),
			name: "a:b",
		},
		{
			desc: "default policy has no length limit",
			cfg:  Default(),
			name: strings.Repeat("a", 4096),
		},
		{
			desc:    "empty name",
			cfg:     Default(),
			name:    "",
			invalid: true,
		},
		{
			desc:    "name with slash",
			cfg:     Default(),
			name:    "foo/bar",
			invalid: true,
		},
		{
			desc:    "custom max length",
			cfg:     Config{Names: NameRules{MaxLength: 3}},
			name:    "abcd",
			invalid: true,
		},
		{
			desc:    "custom pattern",
			cfg:     Config{Names: NameRules{Pattern: "^[a-z]+$"}},
			name:    "Foo",
			invalid: true,
		},
		{
			desc:    "reserved name",
			cfg:     Config{Names: NameRules{Reserved: []string{"admin"}}},
			name:    "admin",
			invalid: true,
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			v, err := New(tC.cfg)
			assert.Equal(t, nil, err)

			err = v.ValidateName(tC.name)
			assert.Equal(t, tC.invalid, errors.Is(err, ErrInvalidName))
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	testCases := []struct {
		desc string
		cfg  Config
	}{
		{
			desc: "negative max length",
			cfg:  Config{Names: NameRules{MaxLength: -1}},
		},
		{
			desc: "broken pattern",
			cfg:  Config{Names: NameRules{Pattern: "^[a-z"}},
		},
		{
			desc: "blank reserved name",
			cfg:  Config{Names: NameRules{Reserved: []string{"ok", " "}}},
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			v, err := New(tC.cfg)
			assert.NotEqual(t, nil, err)
			assert.Equal(t, (*Validator)(nil), v)
		})
	}
}
