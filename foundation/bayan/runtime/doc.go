// Package runtime provides the values, lexical environments, classes and
// native library that compiled Bayan programs execute against.
//
// Values are a closed set of Go types implementing Value. Environments
// are chained scopes; closures keep a reference to the Env they were
// created in. An Interp ties together the builtin scope, the logic
// database, the output writer and call bookkeeping for one program run.
//
// Runtime failures are *mdwerror.Error values with CodeRuntime. A value
// thrown by the program travels as *Thrown.
package runtime
