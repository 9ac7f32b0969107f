package ports

import (
	"context"

	"github.com/zaplanje/price/internal/core/domain"
)

// ShareData is what a native share sheet receives.
type ShareData struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// SharePlatform is the client's sharing surface: share sheet, clipboard,
// popups and user notices.
type SharePlatform interface {
	NativeShareAvailable() bool
	NativeShare(ctx context.Context, data ShareData) error
	ClipboardAvailable() bool
	WriteClipboard(ctx context.Context, text string) error
	// CopyViaSelection is the legacy hidden-field select and copy sequence.
	CopyViaSelection(text string) error
	OpenPopup(url, target, features string)
	Notify(message string)
}

// DocumentHead owns the page's head element. Nothing else writes to it.
type DocumentHead interface {
	RemoveDynamicMeta()
	AppendMeta(tag domain.MetaTag)
	SetTitle(title string)
}
