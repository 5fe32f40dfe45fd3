// Package source defines the note-source abstraction for inkdex.
//
// A Connector enumerates notes and their attachments from wherever they
// live. The only bundled implementation is source/takeout, which reads a
// Google Keep Takeout export from the local filesystem; other services
// plug in by implementing Connector.
package source
