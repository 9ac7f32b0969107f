package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zaplanje/price/internal/core/domain"
	"github.com/zaplanje/price/internal/core/ports"
)

const (
	popupTarget   = "_blank"
	popupFeatures = "width=600,height=400,scrollbars=yes,resizable=yes"
	twitterVia    = "zaplanjske_price"

	// CopiedNotice is shown whenever a share link lands on the clipboard.
	CopiedNotice = "Линк је копиран у клипборд!"
)

// Location is the page a post is viewed on: origin and path, no fragment.
type Location struct {
	Origin string
	Path   string
}

// ShareService builds share links for posts and drives the client's share
// surfaces. It holds no per-request state.
type ShareService struct {
	loc Location
	log zerolog.Logger
}

func NewShareService(loc Location, log zerolog.Logger) *ShareService {
	return &ShareService{loc: loc, log: log}
}

// GenerateShareURL returns the page URL with a fragment pointing at postID.
func (s *ShareService) GenerateShareURL(postID string) string {
	return s.loc.Origin + s.loc.Path + "#post-" + postID
}

func (s *ShareService) FacebookURL(post domain.Post) string {
	return "https://www.facebook.com/sharer/sharer.php?u=" + encodeURIComponent(s.GenerateShareURL(post.ID)) +
		"&quote=" + encodeURIComponent(post.Title) + "%20-%20" + encodeURIComponent(post.Excerpt)
}

func (s *ShareService) TelegramURL(post domain.Post) string {
	return "https://t.me/share/url?url=" + encodeURIComponent(s.GenerateShareURL(post.ID)) +
		"&text=" + encodeURIComponent(post.Title+"\n\n"+post.Excerpt)
}

func (s *ShareService) TwitterURL(post domain.Post) string {
	return "https://twitter.com/intent/tweet?url=" + encodeURIComponent(s.GenerateShareURL(post.ID)) +
		"&text=" + encodeURIComponent(post.Title+"\n\n"+post.Excerpt) +
		"&via=" + twitterVia
}

func (s *ShareService) ShareToFacebook(p ports.SharePlatform, post domain.Post) {
	p.OpenPopup(s.FacebookURL(post), popupTarget, popupFeatures)
}

func (s *ShareService) ShareToTelegram(p ports.SharePlatform, post domain.Post) {
	p.OpenPopup(s.TelegramURL(post), popupTarget, popupFeatures)
}

func (s *ShareService) ShareToTwitter(p ports.SharePlatform, post domain.Post) {
	p.OpenPopup(s.TwitterURL(post), popupTarget, popupFeatures)
}

// Share dispatches to the share function for network.
func (s *ShareService) Share(ctx context.Context, p ports.SharePlatform, network domain.Network, post domain.Post) error {
	switch network {
	case domain.NetworkFacebook:
		s.ShareToFacebook(p, post)
	case domain.NetworkTelegram:
		s.ShareToTelegram(p, post)
	case domain.NetworkTwitter:
		s.ShareToTwitter(p, post)
	case domain.NetworkGeneral:
		s.ShareGeneral(ctx, p, post)
	default:
		return fmt.Errorf("share %q: %w", network, domain.ErrUnknownNetwork)
	}
	return nil
}

// ShareGeneral uses the native share sheet when there is one and falls back
// to copying the link. A failed or cancelled native share also falls back.
func (s *ShareService) ShareGeneral(ctx context.Context, p ports.SharePlatform, post domain.Post) {
	link := s.GenerateShareURL(post.ID)

	if p.NativeShareAvailable() {
		err := p.NativeShare(ctx, ports.ShareData{Title: post.Title, Text: post.Excerpt, URL: link})
		if err == nil {
			return
		}
		s.log.Info().Err(err).Str("post_id", post.ID).Msg("native share failed, copying link")
	}

	s.copyLink(ctx, p, link)
}

func (s *ShareService) copyLink(ctx context.Context, p ports.SharePlatform, link string) {
	if p.ClipboardAvailable() {
		err := p.WriteClipboard(ctx, link)
		if err == nil {
			p.Notify(CopiedNotice)
			return
		}
		s.log.Debug().Err(err).Msg("clipboard write failed")
	}

	if err := p.CopyViaSelection(link); err != nil {
		s.log.Warn().Err(err).Msg("copy via selection failed")
		return
	}
	p.Notify(CopiedNotice)
}

// encodeURIComponent escapes s the way browsers do for a URI component:
// spaces become %20 and !'()* are left alone.
func encodeURIComponent(s string) string {
	return componentReplacer.Replace(url.QueryEscape(s))
}

var componentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)
