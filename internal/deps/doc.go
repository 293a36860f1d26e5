// Package deps resolves the external encoder binaries recast shells out to
// and reports whether they are present and runnable.
package deps
