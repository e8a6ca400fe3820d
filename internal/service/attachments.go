package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mkrogh/catalog-service/internal/model"
	"github.com/mkrogh/catalog-service/internal/storage"
)

// encodeUploads reads each upload stream fully and converts it into a stored
// attachment record. Input order is preserved; an empty payload is rejected.
func encodeUploads(uploads []model.Upload) ([]model.Attachment, error) {
	attachments := make([]model.Attachment, 0, len(uploads))
	for i, upload := range uploads {
		data, err := io.ReadAll(upload.Content)
		if err != nil {
			return nil, newError(KindAttachment, "reading upload %d: %v", i+1, err)
		}
		if len(data) == 0 {
			return nil, newError(KindAttachment, "upload %d is empty", i+1)
		}
		attachments = append(attachments, model.Attachment{
			Seq:      i + 1,
			MimeType: upload.ContentType,
			Data:     data,
		})
	}
	return attachments, nil
}

// exportAttachments writes an item's attachments through the blob sink as
// item-<id>/image_<seq>.<ext>, where ext is the MIME subtype. It is a pure
// projection for external consumption; the stored record is never touched.
func exportAttachments(ctx context.Context, sink storage.BlobSink, item *model.Item) error {
	dir := fmt.Sprintf("item-%d", item.ItemID)
	if err := sink.EnsureDirectory(ctx, dir); err != nil {
		return newError(KindAttachment, "preparing export directory %s: %v", dir, err)
	}

	for i, att := range item.Attachments {
		name := fmt.Sprintf("%s/image_%d.%s", dir, i+1, mimeExtension(att.MimeType))
		if err := sink.WriteFile(ctx, name, att.Data, att.MimeType); err != nil {
			return newError(KindAttachment, "writing %s: %v", name, err)
		}
	}
	return nil
}

// mimeExtension returns the file extension for a MIME type, e.g. "png" for
// "image/png". A type without a subtype is used as-is.
func mimeExtension(mimeType string) string {
	if idx := strings.Index(mimeType, "/"); idx >= 0 {
		return mimeType[idx+1:]
	}
	return mimeType
}
