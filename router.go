package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"

	httpapi "github.com/yourorg/vehicle-api/http"
	httpv1 "github.com/yourorg/vehicle-api/http/v1"
)

type routerDeps struct {
	Process   httpapi.ProcessDeps
	Search    httpapi.SearchDeps
	Recommend httpapi.RecommendDeps
	Reports   httpapi.ReportDeps
	Export    httpapi.ExportDeps
	Resolve   httpv1.ResolveDeps
}

func BuildRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(httprate.LimitByIP(100, 1*time.Minute)) // protect the processing pipeline
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"ok":true}`)) })

	httpapi.RegisterProcess(r, deps.Process)
	httpapi.RegisterSearch(r, deps.Search)
	httpapi.RegisterRecommendations(r, deps.Recommend)
	httpapi.RegisterReports(r, deps.Reports)
	httpapi.RegisterExport(r, deps.Export)

	// v1 resolve endpoint with Redis + SWR
	httpv1.RegisterResolve(r, deps.Resolve)

	return r
}
