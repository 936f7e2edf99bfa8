// Package teamsnap reads a member's availabilities and event times from the
// TeamSnap v3 API.
//
// Every resource is reached through relation names advertised by the API
// root, never through hard-coded paths. A Client is meant to live for one
// sync run: it remembers the root document it fetched first.
package teamsnap
