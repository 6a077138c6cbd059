package handlers

// ShortenRequest is the request body for shortening a URL.
type ShortenRequest struct {
	Body struct {
		URL string `doc:"The URL to shorten, stored verbatim" example:"https://example.com/very/long/path" json:"url" minLength:"1"`
	}
}

// ShortenResponse is the response for a successfully shortened URL.
type ShortenResponse struct {
	Body struct {
		ID  string `doc:"The short identifier" example:"V1StGX"                     json:"id"`
		URL string `doc:"The full short link"  example:"http://localhost:8888/V1StGX" json:"url"`
	}
}

// RedirectRequest is the request for redirecting a short link.
type RedirectRequest struct {
	ID string `doc:"The short identifier" example:"V1StGX" path:"id"`
}

// RedirectResponse redirects the client to the original URL.
type RedirectResponse struct {
	Status   int
	Location string `doc:"The original URL" header:"Location"`
}
