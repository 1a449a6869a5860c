// Package builtin provides the function registry and the built-in
// callables manifests can reference without registering code of their
// own.
package builtin
