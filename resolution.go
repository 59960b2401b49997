// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package sigtrace

import "github.com/pkg/errors"

// MaxResolution is the largest supported converter resolution in bits.
//
const MaxResolution = 32

// ErrResolution is returned (or panicked with) when a converter resolution is
// out of range.
//
var ErrResolution = errors.New("invalid resolution")

// CheckResolution returns an error wrapping ErrResolution if n is not in the
// range [1, MaxResolution].
//
func CheckResolution(n int) error {
	if n < 1 || n > MaxResolution {
		return errors.Wrapf(ErrResolution, "%d bits not in [1, %d]", n, MaxResolution)
	}
	return nil
}

// MustResolution panics if n is not a valid resolution.
// An invalid resolution is a programming error, not a runtime condition.
//
func MustResolution(n int) {
	if err := CheckResolution(n); err != nil {
		panic(err)
	}
}
