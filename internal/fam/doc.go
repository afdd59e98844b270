// Package fam parses application.fam build-declaration files.
//
// The declaration format looks like Python source, but this package never
// executes it. A small lexer and recursive-descent parser accept a fixed
// constructor vocabulary (App, ExtFile, Lib) with keyword arguments made of
// literals, and produce typed Application records. Arbitrary statements,
// unknown identifiers and positional arguments are rejected.
package fam
