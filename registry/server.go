package registry

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brycenichols/ocaml.org/docs"
	"github.com/brycenichols/ocaml.org/opam"
)

// HTTPHandler returns the plain JSON API over the registry:
//
//	GET /packages                      all latest versions
//	GET /packages/{name}               all versions of one package
//	GET /packages/{name}/{version}     full metadata of one version
//	GET /search?q=pattern              ranked search results
//	GET /health                        liveness
//
// When the registry carries a docs proxy, documentation pages are passed
// through from the upstream artifact host:
//
//	GET /docs/{name}/{version}/{page...}
func HTTPHandler(r *Registry) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /packages", r.servePackages)
	mux.HandleFunc("GET /packages/{name}", r.servePackageVersions)
	mux.HandleFunc("GET /packages/{name}/{version}", r.servePackage)
	mux.HandleFunc("GET /search", r.serveSearch)
	mux.HandleFunc("GET /health", r.serveHealth)
	if r.config.Docs != nil {
		mux.HandleFunc("GET /docs/{name}/{version}/{page...}", r.serveDocs)
	}
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrPackageNotFound), errors.Is(err, ErrVersionNotFound):
		status = http.StatusNotFound
	case opam.IsParseError(err):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (r *Registry) servePackages(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"packages": summarize(r.AllLatest()),
	})
}

func (r *Registry) servePackageVersions(w http.ResponseWriter, req *http.Request) {
	name := req.PathValue("name")
	versions, err := r.VersionsOf(name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":     name,
		"versions": versions,
	})
}

func (r *Registry) servePackage(w http.ResponseWriter, req *http.Request) {
	name := req.PathValue("name")
	version, err := opam.ParseVersion(req.PathValue("version"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	meta, err := r.GetMetadata(name, version)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":     name,
		"version":  version,
		"metadata": meta,
	})
}

func (r *Registry) serveSearch(w http.ResponseWriter, req *http.Request) {
	pattern := req.URL.Query().Get("q")
	if pattern == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing query parameter q"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"packages": summarize(r.Search(pattern)),
	})
}

func (r *Registry) serveDocs(w http.ResponseWriter, req *http.Request) {
	name := req.PathValue("name")
	version, err := opam.ParseVersion(req.PathValue("version"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if _, err := r.Exact(name, version); err != nil {
		writeError(w, err)
		return
	}

	doc, err := r.config.Docs.Page(req.Context(), name, version, req.PathValue("page"))
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, docs.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	if doc.ContentType != "" {
		w.Header().Set("Content-Type", doc.ContentType)
	}
	if doc.ETag != "" {
		w.Header().Set("ETag", doc.ETag)
	}
	_, _ = w.Write(doc.Body)
}

func (r *Registry) serveHealth(w http.ResponseWriter, req *http.Request) {
	if err := r.HealthCheck(req.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down", "error": err.Error()})
		return
	}
	stats := r.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"packages": stats.Packages,
		"commit":   stats.LastCommit,
	})
}
