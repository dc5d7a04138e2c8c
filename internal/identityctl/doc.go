// Package identityctl implements the operator command line for managing
// identities directly against the store:
//
//	identityctl [-d dsn] register <email> [display name]
//	identityctl [-d dsn] passwd <id>
//	identityctl [-d dsn] delete <id>
//	identityctl [-d dsn] list
//
// Passwords are read from the terminal without echo, or as one line from
// stdin when stdin is not a terminal.
package identityctl
