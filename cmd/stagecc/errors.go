package main

import "errors"

// Sentinel errors for command operations
var (
	ErrConflictingModes = errors.New("--assembly and --dump-ast are mutually exclusive")
	ErrLexicalErrors    = errors.New("input contains lexical errors")
	ErrTestsFailed      = errors.New("conformance tests failed")
	ErrInvalidStage     = errors.New("invalid stage")
)
