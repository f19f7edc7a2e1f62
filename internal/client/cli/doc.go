// Package cli provides the interactive lab portal command-line client.
//
// The App drives a REPL over a session store, a router guarding the portal
// views and a results service. Commands navigate between views the same
// way the web portal does: protected views bounce to the login view with a
// return URL, and a successful login resumes that navigation.
//
// The REPL is started with App.Run(ctx), which blocks until the user exits
// or input ends.
package cli
