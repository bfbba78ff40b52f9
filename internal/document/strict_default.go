//go:build !notesdebug

package document

const strictByDefault = false
