// Package repo reads opam package definitions out of a local clone of an
// opam repository and keeps that clone in sync with its upstream.
//
// An opam repository lays packages out on disk as
//
//	packages/<name>/<name>.<version>/opam
//
// Repository walks that layout to enumerate names and versions and to read
// individual definition files. Synchronization (clone, pull, resolving the
// current commit) shells out to the git binary; the repository host is the
// source of truth and this package never writes to the clone itself.
package repo
