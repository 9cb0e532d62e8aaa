// Package cli provides the itemkeeper command-line client.
//
// The CLI plays the part of a browser: the access token lives only in
// process memory while the refresh token sits in a persistent cookie jar,
// so a new invocation silently refreshes its way back into the session.
// Every protected command first asks the presence hook whether a usable
// access token exists, and an unrecoverable auth failure prints a
// "session expired" message instead of an error trace.
//
// Commands: register, login, logout, forgot-password, reset-password,
// whoami, items (list, add, show, update, delete), grpc-check and shell.
package cli
