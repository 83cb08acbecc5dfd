// Package ir provides the term and binding types shared by every other
// linjoin package.
//
// This package contains value types only. All other internal packages
// import ir; ir imports nothing internal. This keeps ir the foundational
// layer with no circular dependencies.
//
// Key design constraints:
//   - Terms are immutable values (IRI, String, Int, Bool) plus Var
//   - NO float terms - numeric literals are int64 only
//   - IRIs and strings are NFC normalized at construction and on the
//     canonical encoding boundary
//   - Bindings never map a variable to another variable
package ir
