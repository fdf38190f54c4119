package wire

// Command is the compiler's input AST: a command name plus a builder
// closure that appends its arguments to an encoder. Builders receive the
// `redact` flag so sensitive arguments (LOGIN password, AUTHENTICATE
// initial response, ...) can render as a placeholder when compiling for a
// trace log rather than for the wire.
//
// AcceptUntagged, ErrorExpectsEmptyLine and PausesReader are conveniences a
// builder can set so that imapcore.Client.Enqueue doesn't require every call
// site to repeat them; the core only reads these fields, it never inspects
// Build.
type Command struct {
	Name  string
	Build func(e *encoder, redact bool)

	AcceptUntagged        []string
	ErrorExpectsEmptyLine bool

	// PausesReader marks a command whose successful completion hands the
	// connection's read surface to the caller (STARTTLS, COMPRESS): the
	// reader goroutine must not read another byte until that caller has
	// finished swapping the transport/codec and released it. See
	// imapcore's dispatch.go/queue.go and Client.Upgrade/EnableCompression.
	PausesReader bool
}

// Compiler turns a tagged Command into an ordered list of byte chunks ready
// to be sent to the server, split at synchronizing-literal boundaries.
// External collaborator; the engine only ever calls Compile.
type Compiler interface {
	Compile(tag string, cmd *Command, splitForLiterals, redactForLog bool) ([]string, error)
}

// DefaultCompiler is grounded on internal/imapwire/encoder.go's chained
// Atom/SP/String/Literal encoder, adapted to produce []string chunks
// instead of writing to a live bufio.Writer (see encoder.go).
type DefaultCompiler struct{}

// Compile implements Compiler.
func (DefaultCompiler) Compile(tag string, cmd *Command, splitForLiterals, redactForLog bool) ([]string, error) {
	enc := newEncoder()
	enc.Atom(tag).SP().Atom(cmd.Name)
	if cmd.Build != nil {
		enc.SP()
		cmd.Build(enc, redactForLog)
	}

	chunks := enc.finish()
	if len(chunks) == 0 {
		chunks = []string{""}
	}
	chunks[len(chunks)-1] += "\r\n"

	if !splitForLiterals && len(chunks) > 1 {
		joined := ""
		for _, c := range chunks {
			joined += c
		}
		chunks = []string{joined}
	}

	return chunks, nil
}
