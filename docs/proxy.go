package docs

import (
	"context"
	"strings"

	"github.com/brycenichols/ocaml.org/opam"
)

// Proxy resolves and fetches documentation artifacts for package versions.
// It holds no state beyond the upstream base URL and the fetcher; every
// request goes to the upstream.
type Proxy struct {
	baseURL   string
	namespace opam.Namespace
	fetcher   *BreakerFetcher
}

// NewProxy creates a Proxy against baseURL for packages in ns. A nil
// fetcher gets the default retrying fetcher behind a circuit breaker.
func NewProxy(baseURL string, ns opam.Namespace, fetcher *BreakerFetcher) *Proxy {
	if fetcher == nil {
		fetcher = NewBreakerFetcher(NewFetcher())
	}
	return &Proxy{
		baseURL:   strings.TrimRight(baseURL, "/"),
		namespace: ns,
		fetcher:   fetcher,
	}
}

// PageURL builds the upstream URL of one documentation page. page is the
// path within the package's documentation tree, e.g. "doc/index.html".
func (p *Proxy) PageURL(name string, v opam.Version, page string) string {
	return p.baseURL + "/" + p.namespace.DocsPath(name, v) + "/" + strings.TrimLeft(page, "/")
}

// Page fetches one documentation page.
func (p *Proxy) Page(ctx context.Context, name string, v opam.Version, page string) (*Document, error) {
	return p.fetcher.Fetch(ctx, p.PageURL(name, v, page))
}

// Toc fetches and decodes the package version's table of contents.
func (p *Proxy) Toc(ctx context.Context, name string, v opam.Version) ([]TocEntry, error) {
	doc, err := p.fetcher.Fetch(ctx, p.PageURL(name, v, "doc/index.html.json"))
	if err != nil {
		return nil, err
	}
	return DecodeToc(doc.Body)
}

// Status fetches and decodes the package version's documentation build
// status. A missing status document means the documentation was never
// built; that is reported as ErrNotFound.
func (p *Proxy) Status(ctx context.Context, name string, v opam.Version) (*Status, error) {
	doc, err := p.fetcher.Fetch(ctx, p.PageURL(name, v, "status.json"))
	if err != nil {
		return nil, err
	}
	return DecodeStatus(doc.Body)
}
