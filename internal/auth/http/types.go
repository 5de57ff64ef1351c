package http

// Handler serves session lookups for the authenticated principal.
type Handler struct{}

func New() *Handler {
	return &Handler{}
}
