// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize is the maximum accepted input size. Manifests and
// config files are small; anything past this limit is almost certainly not
// one of them.
const DefaultMaxFileSize int64 = 4 * 1024 * 1024

// options holds the configurable knobs for a parse operation.
type options struct {
	filename    string
	maxFileSize int64
	concrete    bool
}

// Option configures a parse operation.
type Option func(*options)

func defaultOptions() options {
	return options{
		maxFileSize: DefaultMaxFileSize,
		concrete:    false,
	}
}

// WithFilename sets the filename used in error messages.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

// WithMaxFileSize overrides the maximum accepted input size.
func WithMaxFileSize(size int64) Option {
	return func(o *options) { o.maxFileSize = size }
}

// WithConcrete requires all values to be concrete after unification.
func WithConcrete() Option {
	return func(o *options) { o.concrete = true }
}
