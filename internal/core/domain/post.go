package domain

// SiteName is the blog's display name used in titles and Open Graph tags.
const SiteName = "Заплањске приче"

// Post carries the fields of a story needed to share it or to describe it
// for link previews. It is never persisted by this service.
type Post struct {
	ID            string   `json:"id"              validate:"required"`
	Title         string   `json:"title"           validate:"required"`
	Excerpt       string   `json:"excerpt"`
	FeaturedImage string   `json:"featured_image,omitempty"`
	AuthorID      string   `json:"author_id,omitempty"`
	Category      string   `json:"category,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	PublishedAt   string   `json:"published_at,omitempty"`
	UpdatedAt     string   `json:"updated_at,omitempty"`
}

// Network is a social share target.
type Network string

const (
	NetworkFacebook Network = "facebook"
	NetworkTelegram Network = "telegram"
	NetworkTwitter  Network = "twitter"
	NetworkGeneral  Network = "general"
)

// MetaTag is a single <meta> entry. Exactly one of Property or Name is set.
type MetaTag struct {
	Property string `json:"property,omitempty"`
	Name     string `json:"name,omitempty"`
	Content  string `json:"content"`
}

// Key identifies the tag regardless of whether it uses property or name.
func (m MetaTag) Key() string {
	if m.Property != "" {
		return m.Property
	}
	return m.Name
}
