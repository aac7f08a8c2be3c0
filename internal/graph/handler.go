package graph

import (
	"net/http"

	"github.com/graph-gophers/graphql-go/relay"

	"github.com/d60-Lab/journaly/internal/service"
)

// NewHandler returns the POST /graphql handler. The caller's actor must already be in the
// request context.
func NewHandler(svc service.Services) http.Handler {
	return &relay.Handler{Schema: NewSchema(NewResolver(svc))}
}
