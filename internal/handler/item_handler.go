package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mkrogh/catalog-service/internal/model"
	"github.com/mkrogh/catalog-service/internal/service"
)

type ItemHandler struct {
	svc service.ItemService
}

func NewItemHandler(svc service.ItemService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

type AttachmentResponse struct {
	Seq      int    `json:"seq"`
	MimeType string `json:"mimeType"`
	Size     int    `json:"size"`
}

type ItemResponse struct {
	ItemID      int                  `json:"itemId"`
	Category    string               `json:"category"`
	UserID      string               `json:"userId"`
	ItemDesc    string               `json:"itemDesc"`
	Attachments []AttachmentResponse `json:"attachments,omitempty"`
	CreatedAt   string               `json:"createdAt"`
	UpdatedAt   string               `json:"updatedAt"`
}

type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Total int            `json:"total"`
}

func (h *ItemHandler) List(c echo.Context) error {
	items, err := h.svc.ListAll(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, toItemListResponse(items))
}

func (h *ItemHandler) ListByCategory(c echo.Context) error {
	items, err := h.svc.ListByCategory(c.Request().Context(), c.Param("code"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, toItemListResponse(items))
}

func (h *ItemHandler) Get(c echo.Context) error {
	id, err := itemIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	item, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, toItemResponse(item))
}

func (h *ItemHandler) Create(c echo.Context) error {
	sub, closers, err := bindSubmission(c)
	defer closeAll(closers)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	id, err := h.svc.Create(c.Request().Context(), sub)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"itemId":  id,
		"message": fmt.Sprintf("a new item was appended and given id %d", id),
	})
}

func (h *ItemHandler) Update(c echo.Context) error {
	id, err := itemIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	sub, closers, err := bindSubmission(c)
	defer closeAll(closers)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	if err := h.svc.Update(c.Request().Context(), id, sub); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"itemId":  id,
		"message": fmt.Sprintf("item %d was updated", id),
	})
}

func (h *ItemHandler) Delete(c echo.Context) error {
	id, err := itemIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"itemId":  id,
		"message": fmt.Sprintf("item %d was deleted", id),
	})
}

func (h *ItemHandler) ExportAttachments(c echo.Context) error {
	id, err := itemIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	exported, err := h.svc.ExportAttachments(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"itemId":   id,
		"exported": exported,
	})
}

func itemIDParam(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("id"))
}

// bindSubmission reads the submission fields and any "images" file parts
// from the request. The returned closers must be closed by the caller once
// the uploads have been consumed.
func bindSubmission(c echo.Context) (service.Submission, []io.Closer, error) {
	sub := service.Submission{
		Category: c.FormValue("category"),
		UserID:   c.FormValue("userId"),
		ItemDesc: c.FormValue("itemDesc"),
	}
	if v := c.FormValue("itemId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return sub, nil, fmt.Errorf("invalid itemId %q", v)
		}
		sub.ItemID = id
	}

	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return sub, nil, nil
		}
		return sub, nil, err
	}

	var closers []io.Closer
	for _, header := range form.File["images"] {
		file, err := header.Open()
		if err != nil {
			return sub, closers, fmt.Errorf("opening upload %s: %w", header.Filename, err)
		}
		closers = append(closers, file)
		sub.Uploads = append(sub.Uploads, model.Upload{
			ContentType: header.Header.Get("Content-Type"),
			Content:     file,
		})
	}
	return sub, closers, nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}

func toItemResponse(item *model.Item) ItemResponse {
	resp := ItemResponse{
		ItemID:    item.ItemID,
		Category:  item.Category,
		UserID:    item.UserID,
		ItemDesc:  item.ItemDesc,
		CreatedAt: item.CreatedAt.Format(time.RFC3339),
		UpdatedAt: item.UpdatedAt.Format(time.RFC3339),
	}
	for _, att := range item.Attachments {
		resp.Attachments = append(resp.Attachments, AttachmentResponse{
			Seq:      att.Seq,
			MimeType: att.MimeType,
			Size:     len(att.Data),
		})
	}
	return resp
}

func toItemListResponse(items []model.Item) ItemListResponse {
	resp := ItemListResponse{
		Items: make([]ItemResponse, 0, len(items)),
		Total: len(items),
	}
	for i := range items {
		resp.Items = append(resp.Items, toItemResponse(&items[i]))
	}
	return resp
}
