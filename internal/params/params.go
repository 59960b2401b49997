// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package params parses simulation parameter strings.
//
// A parameter string is a list of key=value pairs separated by commas and/or
// white space:
//
//	addr=0x21, data=0b01000010 mode=3
//
package params

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Set is a set of parameters.
//
type Set map[string]string

// Parse parses a parameter string. Duplicate keys are an error.
//
func Parse(s string) (Set, error) {
	out := make(Set)
	toks := lex(s)
	for i := 0; i < len(toks); {
		t := toks[i]
		switch t.typ {
		case tokEOF:
			return out, nil
		case tokComma:
			i++
			continue
		case tokIdent:
		default:
			return nil, parseError(s, t.pos, "expected parameter name")
		}
		if toks[i+1].typ != tokEqual {
			return nil, parseError(s, toks[i+1].pos, "expected '=' after "+t.value)
		}
		v := toks[i+2]
		if v.typ != tokValue {
			return nil, parseError(s, v.pos, "missing value for "+t.value)
		}
		if _, ok := out[t.value]; ok {
			return nil, parseError(s, t.pos, "duplicate parameter "+t.value)
		}
		out[t.value] = v.value
		i += 3
	}
	return out, nil
}

// ParseArgs parses each argument as a parameter string and merges the
// results.
//
func ParseArgs(args []string) (Set, error) {
	return Parse(strings.Join(args, ","))
}

func parseError(in string, pos int, msg string) error {
	return errors.Errorf("in %q at pos %d: %s", in, pos+1, msg)
}

// Check returns an error if s contains keys other than the given ones.
//
func (s Set) Check(keys ...string) error {
	var unknown []string
	for k := range s {
		found := false
		for _, n := range keys {
			if k == n {
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return errors.Errorf("unknown parameter(s) %s, expected one of %s", strings.Join(unknown, ", "), strings.Join(keys, ", "))
	}
	return nil
}

// String returns the raw value for key, or def if not set.
//
func (s Set) String(key, def string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return def
}

// Uint returns the value for key as an unsigned integer. Values may use 0x,
// 0o or 0b prefixes.
//
func (s Set) Uint(key string, def uint64) (uint64, error) {
	v, ok := s[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 0, 64)
	if err != nil {
		return 0, errors.Wrap(err, key)
	}
	return n, nil
}

// Int returns the value for key as an integer.
//
func (s Set) Int(key string, def int) (int, error) {
	v, ok := s[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 0, 0)
	if err != nil {
		return 0, errors.Wrap(err, key)
	}
	return int(n), nil
}

// Float returns the value for key as a float.
//
func (s Set) Float(key string, def float64) (float64, error) {
	v, ok := s[key]
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrap(err, key)
	}
	return f, nil
}

// Rune returns the value for key as a single character.
//
func (s Set) Rune(key string, def rune) (rune, error) {
	v, ok := s[key]
	if !ok {
		return def, nil
	}
	r, n := utf8.DecodeRuneInString(v)
	if r == utf8.RuneError || n != len(v) {
		return 0, errors.Errorf("%s: %q is not a single character", key, v)
	}
	return r, nil
}

// Encode returns s as a parameter string, keys sorted.
//
func (s Set) Encode() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteRune('=')
		b.WriteString(s[k])
	}
	return b.String()
}
