// Package docs proxies rendered package documentation from an upstream
// documentation host. The proxy is stateless: every page request is passed
// through to the upstream, with retry, DNS caching and a per-host circuit
// breaker guarding against a flapping upstream.
//
// Documentation artifacts live under namespace-qualified paths built by
// opam.Namespace.DocsPath; the status document and the table of contents are
// small JSON artifacts decoded into Go trees here.
package docs
