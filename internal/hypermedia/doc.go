// Package hypermedia is a small read-only client for Collection+JSON APIs.
//
// Resources are located by relation name rather than by fixed URL: a root
// document advertises links such as "members" or "availabilities", and
// callers resolve those names before fetching. Additional links on a
// document never break a lookup keyed by relation name.
package hypermedia
