package wire

import "strconv"

// The command builders in this file are a representative subset of the
// IMAP command set, left out of the core engine's scope (external
// collaborators, interfaces only). They exist so imapcore's
// queue/dispatcher/framer can be exercised end-to-end; callers may ignore
// all of this and supply their own Compiler/Parser instead.
//
// Grounded on commands/*.go (one file per command) and client/cmd_any.go /
// cmd_auth.go / cmd_noauth.go / cmd_selected.go for the
// per-connection-state command groupings.

// Capability builds a CAPABILITY command.
func Capability() *Command {
	return &Command{Name: "CAPABILITY"}
}

// Noop builds a NOOP command.
func Noop() *Command {
	return &Command{Name: "NOOP"}
}

// Logout builds a LOGOUT command.
func Logout() *Command {
	return &Command{Name: "LOGOUT"}
}

// Login builds a LOGIN command. The password is masked when the command is
// compiled for logging (redactForLog).
func Login(username, password string) *Command {
	return &Command{
		Name: "LOGIN",
		Build: func(e *encoder, redact bool) {
			e.String(username).SP()
			if redact {
				e.String("****")
			} else {
				e.String(password)
			}
		},
	}
}

// Select builds a SELECT command (or EXAMINE when readOnly is set).
func Select(mailbox string, readOnly bool) *Command {
	name := "SELECT"
	if readOnly {
		name = "EXAMINE"
	}
	return &Command{
		Name: name,
		Build: func(e *encoder, _ bool) {
			e.Mailbox(mailbox)
		},
		AcceptUntagged: []string{"FLAGS", "EXISTS", "RECENT", "OK"},
	}
}

// List builds a LIST command.
func List(reference, pattern string) *Command {
	return &Command{
		Name: "LIST",
		Build: func(e *encoder, _ bool) {
			e.Mailbox(reference).SP().Mailbox(pattern)
		},
		AcceptUntagged: []string{"LIST"},
	}
}

// Status builds a STATUS command.
func Status(mailbox string, items []string) *Command {
	return &Command{
		Name: "STATUS",
		Build: func(e *encoder, _ bool) {
			e.Mailbox(mailbox).SP()
			e.List(len(items), func(i int) { e.Atom(items[i]) })
		},
		AcceptUntagged: []string{"STATUS"},
	}
}

// Fetch builds a FETCH command over a sequence set.
func Fetch(seqSet NumSet, items string) *Command {
	return &Command{
		Name: "FETCH",
		Build: func(e *encoder, _ bool) {
			e.NumSet(seqSet).SP().Atom(items)
		},
		AcceptUntagged: []string{"FETCH"},
	}
}

// UIDFetch is FETCH addressed by UID, via the UID command wrapper.
func UIDFetch(uidSet NumSet, items string) *Command {
	return &Command{
		Name: "UID FETCH",
		Build: func(e *encoder, _ bool) {
			e.NumSet(uidSet).SP().Atom(items)
		},
		AcceptUntagged: []string{"FETCH"},
	}
}

// Store builds a STORE command.
func Store(seqSet NumSet, item string, flags []string) *Command {
	return &Command{
		Name: "STORE",
		Build: func(e *encoder, _ bool) {
			e.NumSet(seqSet).SP().Atom(item).SP()
			e.List(len(flags), func(i int) { e.Atom(flags[i]) })
		},
		AcceptUntagged: []string{"FETCH"},
	}
}

// Copy builds a COPY command.
func Copy(seqSet NumSet, mailbox string) *Command {
	return &Command{
		Name: "COPY",
		Build: func(e *encoder, _ bool) {
			e.NumSet(seqSet).SP().Mailbox(mailbox)
		},
	}
}

// StartTLS builds a STARTTLS command. PausesReader is set: a conforming
// server sends nothing else before the tagged OK, and the caller must
// install the TLS handshake over the connection's read surface before the
// reader goroutine reads another byte (see imapcore.Client.Upgrade).
func StartTLS() *Command {
	return &Command{Name: "STARTTLS", PausesReader: true}
}

// Compress builds a COMPRESS command for the given mechanism (only
// "DEFLATE" is defined by RFC 4978). PausesReader is set for the same
// reason as StartTLS: the DEFLATE stream begins immediately after the
// tagged OK, and the reader goroutine must not consume those bytes with
// the old, uncompressed framer (see imapcore.Client.EnableCompression).
func Compress(mechanism string) *Command {
	return &Command{
		Name: "COMPRESS",
		Build: func(e *encoder, _ bool) {
			e.Atom(mechanism)
		},
		PausesReader: true,
	}
}

// Idle builds an IDLE command. No arguments; the server answers with a
// "+" continuation immediately after "tag IDLE\r\n" and the client stays
// in idle mode until it chooses to send "DONE\r\n", which is driven
// externally (by whatever caller decides to stop idling) rather than
// precompiled as a second chunk here.
func Idle() *Command {
	return &Command{Name: "IDLE"}
}

// AppendLiteral builds an APPEND command whose message body is sent as a
// literal. The literal is always synchronizing (plain {N}) for maximum
// server compatibility.
func AppendLiteral(mailbox string, flags []string, body []byte) *Command {
	return &Command{
		Name: "APPEND",
		Build: func(e *encoder, redact bool) {
			e.Mailbox(mailbox)
			if len(flags) > 0 {
				e.SP().List(len(flags), func(i int) { e.Atom(flags[i]) })
			}
			e.SP()
			if redact {
				e.Atom("{" + strconv.Itoa(len(body)) + "}")
			} else {
				e.Literal(string(body), true)
			}
		},
	}
}
