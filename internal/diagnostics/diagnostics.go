package diagnostics

import (
	"fmt"

	"github.com/veldt-lang/veldt/internal/token"
)

// Error codes, grouped by the stage that emits them.
const (
	// Lexer
	ErrL001 = "L001" // illegal character or malformed literal

	// Parser
	ErrP001 = "P001" // expected-token mismatch
	ErrP002 = "P002" // misplaced or unterminated declaration
	ErrP003 = "P003" // default in an impl/require binder
	ErrP005 = "P005" // expected identifier or constant expression
	ErrP006 = "P006" // identifier case rule violation

	// Analyzer
	ErrA001 = "A001" // undeclared name
	ErrA002 = "A002" // arity mismatch
	ErrA003 = "A003" // kind or range mismatch
	ErrA004 = "A004" // redefinition
	ErrA005 = "A005" // unused const parameter
	ErrA006 = "A006" // invalid default reference

	// Resolution
	ErrR001 = "R001" // no implementation found
	ErrR002 = "R002" // ambiguous implementations

	// Operational
	ErrS001 = "S001" // trace store failure
	ErrG001 = "G001" // service failure
)

// DiagnosticError is a source-positioned error with a stable code.
// File is filled in by the pipeline when the emitting stage only had
// a token to work with.
type DiagnosticError struct {
	Code    string
	Message string
	File    string
	Line    int
	Column  int
	Got     interface{}
}

// NewError builds a DiagnosticError at the token's position. An
// optional trailing argument records the offending value for
// "expected X, got Y" style messages.
func NewError(code string, tok token.Token, message string, got ...interface{}) *DiagnosticError {
	e := &DiagnosticError{
		Code:    code,
		Message: message,
		Line:    tok.Line,
		Column:  tok.Column,
	}
	if len(got) > 0 {
		e.Got = got[0]
	}
	return e
}

// Text is the message with the offending value folded in, without
// code or position. Renderers add their own framing around it.
func (e *DiagnosticError) Text() string {
	if e.Got != nil {
		return fmt.Sprintf("%s, got '%v'", e.Message, e.Got)
	}
	return e.Message
}

func (e *DiagnosticError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d [%s] %s", e.File, e.Line, e.Column, e.Code, e.Text())
	}
	return fmt.Sprintf("[%s] Line %d:%d: %s", e.Code, e.Line, e.Column, e.Text())
}
