package routes

import (
	"github.com/gin-gonic/gin"

	authhttp "github.com/folio-dash/folio-backend/internal/auth/http"
	docshttp "github.com/folio-dash/folio-backend/internal/docs/http"
	projectshttp "github.com/folio-dash/folio-backend/internal/projects/http"
)

type V1Deps struct {
	// Auth resolves the principal for every owner-scoped route.
	Auth gin.HandlerFunc
	// UploadLimit guards the multipart project routes. Optional.
	UploadLimit gin.HandlerFunc

	Projects *projectshttp.Handler
	Session  *authhttp.Handler
	Docs     *docshttp.Handler
}

func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")

	// docs are public
	if dep.Docs != nil {
		dep.Docs.Register(api.Group("/docs"))
	}

	private := api.Group("")
	if dep.Auth != nil {
		private.Use(dep.Auth)
	}

	if dep.Session != nil {
		dep.Session.Register(private.Group("/auth"))
	}

	if dep.Projects != nil {
		var uploadMW []gin.HandlerFunc
		if dep.UploadLimit != nil {
			uploadMW = append(uploadMW, dep.UploadLimit)
		}
		dep.Projects.Register(private.Group("/projects"), uploadMW...)
	}
}
