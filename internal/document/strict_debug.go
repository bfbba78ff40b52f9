//go:build notesdebug

package document

// Debug builds report stale indices instead of ignoring them.
const strictByDefault = true
