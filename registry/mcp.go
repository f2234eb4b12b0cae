package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/brycenichols/ocaml.org/index"
	"github.com/brycenichols/ocaml.org/opam"
)

// PackageSummary is the wire shape of one package in MCP tool results.
type PackageSummary struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Synopsis string `json:"synopsis,omitempty"`
}

type listPackagesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of packages to return, 0 for all"`
}

type listPackagesOutput struct {
	Packages []PackageSummary `json:"packages"`
	Total    int              `json:"total"`
}

type searchPackagesInput struct {
	Pattern string `json:"pattern" jsonschema:"free-text search pattern"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of results, 0 for all"`
}

type searchPackagesOutput struct {
	Packages []PackageSummary `json:"packages"`
}

type showPackageInput struct {
	Name    string `json:"name" jsonschema:"package name"`
	Version string `json:"version,omitempty" jsonschema:"specific version, latest when omitted"`
}

type showPackageOutput struct {
	Name     string         `json:"name"`
	Version  string         `json:"version"`
	Metadata *opam.Metadata `json:"metadata"`
}

// NewMCPServer builds an MCP server exposing the registry's query layer as
// tools: list_packages, search_packages and show_package.
func NewMCPServer(r *Registry) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    r.config.ServerInfo.Name,
		Version: r.config.ServerInfo.Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_packages",
		Description: "List the latest version of every indexed package",
	}, r.handleListPackages)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_packages",
		Description: "Rank packages against a free-text pattern",
	}, r.handleSearchPackages)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "show_package",
		Description: "Show the full metadata of one package version",
	}, r.handleShowPackage)

	return server
}

// ServeStdio runs the MCP server over stdio until the client disconnects or
// ctx is cancelled.
func ServeStdio(ctx context.Context, r *Registry) error {
	return NewMCPServer(r).Run(ctx, &mcp.StdioTransport{})
}

// MCPHandler returns an http.Handler speaking the streamable HTTP MCP
// transport.
func MCPHandler(r *Registry) http.Handler {
	server := NewMCPServer(r)
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}

func (r *Registry) handleListPackages(ctx context.Context, req *mcp.CallToolRequest, in listPackagesInput) (*mcp.CallToolResult, listPackagesOutput, error) {
	pkgs := r.AllLatest()
	total := len(pkgs)
	if in.Limit > 0 && in.Limit < len(pkgs) {
		pkgs = pkgs[:in.Limit]
	}
	return nil, listPackagesOutput{Packages: summarize(pkgs), Total: total}, nil
}

func (r *Registry) handleSearchPackages(ctx context.Context, req *mcp.CallToolRequest, in searchPackagesInput) (*mcp.CallToolResult, searchPackagesOutput, error) {
	if in.Pattern == "" {
		return nil, searchPackagesOutput{}, errors.New("pattern is required")
	}
	pkgs := r.Search(in.Pattern)
	if in.Limit > 0 && in.Limit < len(pkgs) {
		pkgs = pkgs[:in.Limit]
	}
	return nil, searchPackagesOutput{Packages: summarize(pkgs)}, nil
}

func (r *Registry) handleShowPackage(ctx context.Context, req *mcp.CallToolRequest, in showPackageInput) (*mcp.CallToolResult, showPackageOutput, error) {
	if in.Name == "" {
		return nil, showPackageOutput{}, errors.New("name is required")
	}

	var (
		version opam.Version
		err     error
	)
	if in.Version == "" {
		pkg, lerr := r.LatestOf(in.Name)
		if lerr != nil {
			return nil, showPackageOutput{}, lerr
		}
		version = pkg.Version
	} else {
		version, err = opam.ParseVersion(in.Version)
		if err != nil {
			return nil, showPackageOutput{}, fmt.Errorf("invalid version %q: %w", in.Version, err)
		}
	}

	meta, err := r.GetMetadata(in.Name, version)
	if err != nil {
		return nil, showPackageOutput{}, err
	}
	return nil, showPackageOutput{Name: in.Name, Version: string(version), Metadata: meta}, nil
}

// summarize forces each handle for its synopsis; unparsable definitions
// keep their place with an empty synopsis.
func summarize(pkgs []index.Package) []PackageSummary {
	out := make([]PackageSummary, 0, len(pkgs))
	for _, pkg := range pkgs {
		summary := PackageSummary{Name: pkg.Name, Version: string(pkg.Version)}
		if meta, err := pkg.Meta.Force(); err == nil {
			summary.Synopsis = meta.Synopsis
		}
		out = append(out, summary)
	}
	return out
}
