package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/zaplanje/price/internal/core/domain"
	"github.com/zaplanje/price/internal/core/ports"
)

// DefaultShareImage is used for link previews of posts without a featured image.
const DefaultShareImage = "https://images.pexels.com/photos/159711/books-bookstore-book-reading-159711.jpeg?auto=compress&cs=tinysrgb&w=1200&h=630&dpr=1"

// MetaService describes posts for link-preview crawlers by rewriting the
// document head through a DocumentHead gateway.
type MetaService struct {
	share *ShareService
	text  *bluemonday.Policy
}

func NewMetaService(share *ShareService) *MetaService {
	return &MetaService{share: share, text: bluemonday.StrictPolicy()}
}

// TagsForPost returns the ordered meta entries describing post, ending with
// one article:tag per post tag.
func (s *MetaService) TagsForPost(post domain.Post) []domain.MetaTag {
	link := s.share.GenerateShareURL(post.ID)
	image := post.FeaturedImage
	if image == "" {
		image = DefaultShareImage
	}
	published := post.PublishedAt
	if published == "" {
		published = post.UpdatedAt
	}
	excerpt := s.plainText(post.Excerpt)

	tags := []domain.MetaTag{
		{Property: "og:title", Content: post.Title},
		{Property: "og:description", Content: excerpt},
		{Property: "og:type", Content: "article"},
		{Property: "og:url", Content: link},
		{Property: "og:site_name", Content: domain.SiteName},
		{Property: "og:locale", Content: "sr_RS"},
		{Property: "og:image", Content: image},
		{Property: "og:image:width", Content: "1200"},
		{Property: "og:image:height", Content: "630"},
		{Property: "og:image:alt", Content: post.Title},

		{Property: "article:published_time", Content: published},
		{Property: "article:modified_time", Content: post.UpdatedAt},
		{Property: "article:section", Content: post.Category},

		{Name: "twitter:card", Content: "summary_large_image"},
		{Name: "twitter:site", Content: "@" + twitterVia},
		{Name: "twitter:title", Content: post.Title},
		{Name: "twitter:description", Content: excerpt},
		{Name: "twitter:image", Content: image},
		{Name: "twitter:image:alt", Content: post.Title},

		{Name: "description", Content: excerpt},
	}
	for _, t := range post.Tags {
		tags = append(tags, domain.MetaTag{Property: "article:tag", Content: t})
	}
	return tags
}

// PageTitle is the document title for a post page.
func (s *MetaService) PageTitle(post domain.Post) string {
	return post.Title + " - " + domain.SiteName
}

// UpdateMetaTagsForPost replaces every previously injected tag with the ones
// describing post and sets the page title. Repeated calls leave only the
// last post's tags behind.
func (s *MetaService) UpdateMetaTagsForPost(head ports.DocumentHead, post domain.Post) {
	head.RemoveDynamicMeta()
	for _, t := range s.TagsForPost(post) {
		head.AppendMeta(t)
	}
	head.SetTitle(s.PageTitle(post))
}

// plainText drops any markup from rich-text excerpts.
func (s *MetaService) plainText(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.text.Sanitize(v)))
}
