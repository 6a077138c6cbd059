package shortener

// ID is the short identifier of a link.
type ID string

// IDLength is the number of characters in a generated ID.
const IDLength = 6

// Link pairs a short identifier with the original URL it names.
type Link struct {
	ID  ID
	URL string
}

// ShortLink is the result of shortening a URL.
type ShortLink struct {
	ID       ID
	URL      string // original URL, stored verbatim
	ShortURL string // externally reachable base address + "/" + ID
}
