package handler

import (
	"mime"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"voicedoc/internal/http/middleware"
	"voicedoc/internal/service"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type updateRecordRequest struct {
	Title         *string `json:"title"`
	ProcessedText *string `json:"processed_text"`
}

// CreateRecord accepts a multipart upload (field "file" plus a "title" form
// value), stores it and kicks off background processing. The response is the
// pending record; the client polls it until processing settles.
func CreateRecord(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		title := c.FormValue("title")

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		rec, err := svc.Create(c.UserContext(), middleware.UserFromCtx(c).ID, title, f, fh.Filename)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	}
}

// ListRecords returns the caller's records, newest first.
func ListRecords(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.List(c.UserContext(), middleware.UserFromCtx(c).ID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetRecord returns the full record detail, including status and texts.
func GetRecord(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := recordID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rec, err := svc.Get(c.UserContext(), middleware.UserFromCtx(c).ID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(rec)
	}
}

// UpdateRecord overwrites the title and/or processed text.
func UpdateRecord(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := recordID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req updateRecordRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		rec, err := svc.Update(c.UserContext(), middleware.UserFromCtx(c).ID, id, service.RecordUpdate{
			Title:         req.Title,
			ProcessedText: req.ProcessedText,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(rec)
	}
}

// DeleteRecord removes the record and its stored files.
func DeleteRecord(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := recordID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), middleware.UserFromCtx(c).ID, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// RegenerateDocument re-renders the Word document from the current
// processed text.
func RegenerateDocument(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := recordID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rec, err := svc.Regenerate(c.UserContext(), middleware.UserFromCtx(c).ID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(rec)
	}
}

// DownloadAudio streams the original audio upload.
func DownloadAudio(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := recordID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, rec, err := svc.OpenAudio(c.UserContext(), middleware.UserFromCtx(c).ID, id)
		if err != nil {
			return writeServiceError(c, err)
		}

		// Stored names are opaque UUIDs; the download carries the title.
		ext := filepath.Ext(rec.AudioFilePath)
		name := rec.Title + "_audio" + ext
		ct := mime.TypeByExtension(ext)
		if ct == "" {
			ct = "application/octet-stream"
		}
		c.Set(fiber.HeaderContentType, ct)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
		// fasthttp closes the stream after the response is written.
		return c.SendStream(rc)
	}
}

// DownloadDocument streams the rendered Word document.
func DownloadDocument(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := recordID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, rec, err := svc.OpenDocument(c.UserContext(), middleware.UserFromCtx(c).ID, id)
		if err != nil {
			return writeServiceError(c, err)
		}

		name := rec.Title + ".docx"
		c.Set(fiber.HeaderContentType, docxContentType)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
		return c.SendStream(rc)
	}
}

func recordID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
