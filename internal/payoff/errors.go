package payoff

import "fmt"

// CompileError reports an expression that failed to parse or that uses a
// construct outside the allowed grammar. It always names the offending
// token or identifier so the caller can surface an actionable message.
type CompileError struct {
	Construct string // offending token, identifier, or construct
	Pos       int    // byte offset into the source text
	Reason    string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("invalid payoff expression at offset %d: %s", e.Pos, e.Reason)
}

// compileErrorf builds a CompileError for the given construct/position.
func compileErrorf(construct string, pos int, format string, args ...any) *CompileError {
	return &CompileError{
		Construct: construct,
		Pos:       pos,
		Reason:    fmt.Sprintf(format, args...),
	}
}

// EvalError reports a well-formed expression that failed at evaluation
// time for a specific input, e.g. division by zero or a math domain
// violation. It is never produced at compile time.
type EvalError struct {
	Reason string
}

func (e *EvalError) Error() string {
	return "payoff evaluation failed: " + e.Reason
}

func evalErrorf(format string, args ...any) *EvalError {
	return &EvalError{Reason: fmt.Sprintf(format, args...)}
}
