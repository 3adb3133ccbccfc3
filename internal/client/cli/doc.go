// Package cli provides the interactive My Cloud command-line client.
//
// It restores the persisted session, then runs a REPL over the auth, file
// and admin services. Owner commands need a session; admin commands are
// hidden and refused unless the principal is an administrator.
//
// Key features:
//   - Register / Login / Logout / WhoAmI
//   - List, upload, download, preview, edit and delete own files
//   - Create and revoke public links, open a public link anonymously
//   - Admin: list users, delete users, toggle admin rights, storage
//     statistics and a per-user file view
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
