package errutils

// Package errutils provides a set of utilities for working with errors in Go.

// Example:
//
// The following example demonstrates how to use `NewCustomError` to create errors from a template:
//
//     package main
//
//     import (
//         "fmt"
//         "oss.nandlabs.io/regular/errutils"
//     )
//
//     var errNotFound = errutils.NewCustomError("item %s not found")
//
//     func main() {
//         err := errNotFound.Err("foo")
//         fmt.Println(err)
//     }
//
// In the above example, `Err` fills the template's format verbs with its arguments,
// so the program prints "item foo not found".
