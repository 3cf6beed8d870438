// Package blog holds the post model shared by the listing and detail pages,
// plus the reading-time and date helpers rendered next to every post.
package blog

// Summary is the listing view of a post. UID is its identity.
type Summary struct {
	UID                  string
	FirstPublicationDate *string
	Title                string
	Subtitle             string
	Author               string
}

// Link returns the detail route for the post.
func (s Summary) Link() string {
	return "/post/" + s.UID + "/"
}

// Post is a fully fetched post as shown on its detail page.
type Post struct {
	Summary
	BannerURL string
	Content   []ContentBlock
}

// ContentBlock is one heading followed by its body paragraphs.
type ContentBlock struct {
	Heading string
	Body    []Paragraph
}

// Paragraph is a rich text element. Only Text counts towards reading time.
type Paragraph struct {
	Type  string
	Text  string
	Spans []Span
}

// Span marks inline formatting over Text, using rune offsets.
type Span struct {
	Start int
	End   int
	Type  string
	URL   string
}
