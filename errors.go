package imapcore

import (
	"errors"
	"fmt"
)

// Error taxonomy: every fatal error funneled through Client.fail is one of
// TransportError, TimeoutError, ParserError, CompilerError, or
// WorkerError; ProtocolError is delivered only through a command's
// Completion and never reaches the error funnel.
//
// imapclient/client.go, the library this is adapted from, has no
// equivalent taxonomy — just ad hoc fmt.Errorf/log.Println calls, with a
// "// TODO: handle error" at the exact point this taxonomy replaces.

// ErrClosed is returned by Enqueue and friends once the client has been
// closed, and by Completion.Wait for commands still pending at close time
// (see SPEC_FULL.md §D, decision 2, "Post-close pending commands" — leaving
// those completions dangling forever was judged a bug, so closing rejects
// them instead).
var ErrClosed = errors.New("imapcore: client closed")

// TransportError wraps a socket open failure, unexpected close, or
// transport-level I/O error. Fatal.
type TransportError struct{ Err error }

func (e *TransportError) Error() string { return fmt.Sprintf("imapcore: transport error: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError reports that the per-write socket timeout fired before any
// inbound byte arrived to cancel it. Fatal.
type TimeoutError struct{}

func (e *TimeoutError) Error() string { return "imapcore: socket timeout" }

// ParserError wraps an error returned by the external Parser collaborator.
// Fatal.
type ParserError struct{ Err error }

func (e *ParserError) Error() string { return fmt.Sprintf("imapcore: parser error: %v", e.Err) }
func (e *ParserError) Unwrap() error { return e.Err }

// CompilerError wraps an error returned by the external Compiler
// collaborator. Fatal for the enqueued command and for the connection.
type CompilerError struct{ Err error }

func (e *CompilerError) Error() string { return fmt.Sprintf("imapcore: compiler error: %v", e.Err) }
func (e *CompilerError) Unwrap() error { return e.Err }

// ProtocolError reports that the server answered a command with NO or BAD.
// It surfaces only via that command's Completion; the connection remains
// ready for further commands.
//
// Challenge carries a continuation's decoded payload when the command had
// already exhausted its data chunks and was flagged ErrorExpectsEmptyLine
// (see wire.Authenticate): some SASL mechanisms, notably XOAUTH2, answer a
// failed initial response with a further continuation carrying a base64
// JSON error blob rather than an immediate NO. Empty unless the server
// actually sent one.
type ProtocolError struct {
	Code          string
	HumanReadable string
	Challenge     string
}

func (e *ProtocolError) Error() string {
	msg := e.HumanReadable
	if msg == "" {
		msg = "Error"
	}
	if e.Code != "" {
		return fmt.Sprintf("imapcore: %s [%s]", msg, e.Code)
	}
	return "imapcore: " + msg
}

// WorkerError wraps a failure in the (optional) background compression
// worker. Fatal.
type WorkerError struct{ Err error }

func (e *WorkerError) Error() string { return fmt.Sprintf("imapcore: worker error: %v", e.Err) }
func (e *WorkerError) Unwrap() error { return e.Err }
