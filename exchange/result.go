package exchange

import "strings"

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// Result is the ordered set of text lines returned to the exchange partner.
// The first line of a status result is the fixed success/failure token.
type Result struct {
	Lines []string
}

// Success builds a success result with optional payload lines.
func Success(lines ...string) Result {
	return Result{Lines: append([]string{statusSuccess}, lines...)}
}

// Failure builds a failure result carrying an error message.
func Failure(message string) Result {
	return Result{Lines: []string{statusFailure, message}}
}

// Raw builds a result without a status token, for responses such as init
// that carry bare key=value lines.
func Raw(lines ...string) Result {
	return Result{Lines: lines}
}

// OK reports whether the result is a success.
func (r Result) OK() bool {
	return len(r.Lines) > 0 && r.Lines[0] == statusSuccess
}

// Text renders the result as the protocol wire form, lines joined by \n.
func (r Result) Text() string {
	return strings.Join(r.Lines, "\n")
}
