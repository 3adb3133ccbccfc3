// Package client is the transport layer of the My Cloud client.
//
// # Overview
//
// Client is the contract the services program against: one method per REST
// endpoint of the storage server, with typed requests and responses from the
// models package. HTTPClient implements it over net/http.
//
// # Credentials
//
// The server authenticates with a session cookie. HTTPClient keeps cookies in
// a jar scoped to the configured base URL and echoes the CSRF cookie back as
// a header on unsafe methods. Credentials, SetCredentials and
// ClearCredentials let the session layer persist and restore the cookies
// across process restarts. Public share endpoints are always called without
// credentials.
//
// # Scopes
//
// File verbs take a Scope. ScopeOwner addresses the caller's own files,
// ScopeAdmin the administrative endpoints that address any user's files.
//
// # Errors
//
// Every failure is an *errx.Error: non-2xx answers are decoded with
// errx.FromResponse, failures without a response become errx.KindTransport.
package client
