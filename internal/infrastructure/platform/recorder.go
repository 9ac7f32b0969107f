// Package platform turns share operations into instructions for the web
// client. The server cannot open windows or touch the clipboard itself, so
// every platform call is recorded and sent back for the client to replay.
package platform

import (
	"context"
	"strings"
	"sync"

	"github.com/zaplanje/price/internal/core/domain"
	"github.com/zaplanje/price/internal/core/ports"
)

// Support is what the client reported about one capability.
type Support int

const (
	Unsupported Support = iota
	Supported
	// Failed means the client already tried and the attempt failed or was
	// cancelled, so the next fallback should be used.
	Failed
)

// ParseSupport reads a capability header value: "1"/"true" for supported,
// "failed"/"cancelled"/"denied" for a failed attempt, anything else for
// unsupported.
func ParseSupport(v string) Support {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return Supported
	case "failed", "cancelled", "canceled", "denied":
		return Failed
	default:
		return Unsupported
	}
}

// Capabilities describe the requesting client.
type Capabilities struct {
	NativeShare Support
	Clipboard   Support
}

// Action is one instruction for the client.
type Action struct {
	Type     string           `json:"type"`
	URL      string           `json:"url,omitempty"`
	Target   string           `json:"target,omitempty"`
	Features string           `json:"features,omitempty"`
	Text     string           `json:"text,omitempty"`
	Share    *ports.ShareData `json:"share,omitempty"`
	Message  string           `json:"message,omitempty"`
}

const (
	ActionNativeShare   = "native_share"
	ActionClipboard     = "clipboard_write"
	ActionCopySelection = "copy_selection"
	ActionPopup         = "popup"
	ActionNotify        = "notify"
)

// Recorder is a SharePlatform for a single request.
type Recorder struct {
	caps Capabilities

	mu      sync.Mutex
	actions []Action
}

func NewRecorder(caps Capabilities) *Recorder {
	return &Recorder{caps: caps}
}

var _ ports.SharePlatform = (*Recorder)(nil)

func (r *Recorder) NativeShareAvailable() bool { return r.caps.NativeShare != Unsupported }

// NativeShare fails with ErrShareCancelled when the client reported that its
// share sheet was dismissed.
func (r *Recorder) NativeShare(_ context.Context, data ports.ShareData) error {
	switch r.caps.NativeShare {
	case Failed:
		return domain.ErrShareCancelled
	case Unsupported:
		return domain.ErrShareUnsupported
	}
	r.record(Action{Type: ActionNativeShare, Share: &data})
	return nil
}

func (r *Recorder) ClipboardAvailable() bool { return r.caps.Clipboard != Unsupported }

func (r *Recorder) WriteClipboard(_ context.Context, text string) error {
	if r.caps.Clipboard != Supported {
		return domain.ErrClipboardUnavailable
	}
	r.record(Action{Type: ActionClipboard, Text: text})
	return nil
}

func (r *Recorder) CopyViaSelection(text string) error {
	r.record(Action{Type: ActionCopySelection, Text: text})
	return nil
}

func (r *Recorder) OpenPopup(url, target, features string) {
	r.record(Action{Type: ActionPopup, URL: url, Target: target, Features: features})
}

func (r *Recorder) Notify(message string) {
	r.record(Action{Type: ActionNotify, Message: message})
}

// Actions returns the recorded instructions in order.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Action, len(r.actions))
	copy(out, r.actions)
	return out
}

func (r *Recorder) record(a Action) {
	r.mu.Lock()
	r.actions = append(r.actions, a)
	r.mu.Unlock()
}
