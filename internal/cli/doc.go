// Package cli provides the interactive GradeKeeper terminal front-end.
//
// It wires configuration, the user file, the access rules and the services,
// then runs a REPL. Typical flow: log in, then enter commands.
//
// Key features:
//   - Login / Logout
//   - Show grades (all of them for teachers, your own otherwise)
//   - Enter a grade
//   - Create student and teacher accounts
//   - Reset your password with a one-time code sent by mail
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// A failure to save the user file ends the program with exit status 1.
package cli
