package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers the shorten and redirect operations.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "shorten",
		Method:        http.MethodPost,
		Path:          "/",
		Summary:       "Shorten a URL",
		Description:   "Assigns a new short identifier to the URL. Shortening a URL again replaces its previous identifier.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusInternalServerError},
	}, urlHandler.Shorten)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{id}",
		Summary:     "Redirect to the original URL",
		Description: "Redirects to the URL named by the short identifier.",
		Tags:        []string{"Links"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, urlHandler.Redirect)
}
