package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zaplanje/price/internal/api/metrics"
	"github.com/zaplanje/price/internal/core/domain"
	"github.com/zaplanje/price/internal/core/service"
	"github.com/zaplanje/price/internal/infrastructure/htmlhead"
	"github.com/zaplanje/price/internal/infrastructure/platform"
)

// Capability headers sent by the web client. A value of "failed" tells the
// server the client already tried that surface.
const (
	HeaderNativeShare = "X-Native-Share"
	HeaderClipboard   = "X-Clipboard"
)

type ShareHandler struct {
	share *service.ShareService
	meta  *service.MetaService
	shell *htmlhead.Shell
}

func NewShareHandler(share *service.ShareService, meta *service.MetaService, shell *htmlhead.Shell) *ShareHandler {
	return &ShareHandler{share: share, meta: meta, shell: shell}
}

type shareResponse struct {
	ShareURL string            `json:"share_url"`
	Actions  []platform.Action `json:"actions"`
}

// Share returns what the client must do to share a post on network.
//
// @Summary      Share a post
// @Tags         share
// @Accept       json
// @Produce      json
// @Param        network         path    string       true   "facebook, telegram, twitter or general"
// @Param        X-Native-Share  header  string       false  "1 when navigator.share exists, failed after a cancelled share"
// @Param        X-Clipboard     header  string       false  "1 when the clipboard API exists, failed after a rejected write"
// @Param        body            body    domain.Post  true   "Post to share"
// @Success      200  {object}  shareResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /share/{network} [post]
func (h *ShareHandler) Share(c echo.Context) error {
	post, err := bindPost(c)
	if err != nil {
		return err
	}

	rec := platform.NewRecorder(platform.Capabilities{
		NativeShare: platform.ParseSupport(c.Request().Header.Get(HeaderNativeShare)),
		Clipboard:   platform.ParseSupport(c.Request().Header.Get(HeaderClipboard)),
	})

	network := domain.Network(c.Param("network"))
	if err := h.share.Share(c.Request().Context(), rec, network, post); err != nil {
		return err
	}
	metrics.SharesTotal.WithLabelValues(string(network)).Inc()

	return c.JSON(http.StatusOK, shareResponse{
		ShareURL: h.share.GenerateShareURL(post.ID),
		Actions:  rec.Actions(),
	})
}

// Meta renders the page shell with link-preview tags for a post.
//
// @Summary      Render post meta tags
// @Tags         share
// @Accept       json
// @Produce      html
// @Param        body  body      domain.Post  true  "Post to describe"
// @Success      200   {string}  string
// @Failure      400   {object}  map[string]string
// @Router       /meta [post]
func (h *ShareHandler) Meta(c echo.Context) error {
	post, err := bindPost(c)
	if err != nil {
		return err
	}

	doc, err := h.shell.Document()
	if err != nil {
		return fmt.Errorf("meta: %w", err)
	}
	h.meta.UpdateMetaTagsForPost(doc, post)

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return fmt.Errorf("meta: %w", err)
	}
	metrics.MetaRendersTotal.Inc()

	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func bindPost(c echo.Context) (domain.Post, error) {
	var post domain.Post
	if err := c.Bind(&post); err != nil {
		return post, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&post); err != nil {
		return post, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return post, nil
}
