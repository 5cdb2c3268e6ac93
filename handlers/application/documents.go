package application

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/concours-mef/api/handlers"
	"github.com/concours-mef/api/model"
	"github.com/concours-mef/api/services"
	"github.com/concours-mef/api/utils/response"
)

// DocumentHandler handles uploads and downloads of application attachments
type DocumentHandler struct {
	documents *services.DocumentService
}

func NewDocumentHandler(documents *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Upload handles POST /api/v1/applications/:number/documents
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	number := c.Params("number")

	kind := model.DocumentKind(c.FormValue("kind"))
	if kind != model.DocumentKindCV && kind != model.DocumentKindNationalID && kind != model.DocumentKindDiploma {
		return response.BadRequest(c, "Invalid document kind")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "Missing file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.BadRequest(c, "Unable to read file")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return response.BadRequest(c, "Unable to read file")
	}

	document, err := h.documents.UploadDocument(c.Context(), number, kind, fileHeader.Filename, content)
	if err != nil {
		if services.IsBusinessError(err) {
			return handlers.BusinessError(c, err)
		}
		return response.BadRequest(c, err.Error())
	}

	return response.Created(c, document)
}

// List handles GET /api/v1/applications/:number/documents
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	number := c.Params("number")

	documents, err := h.documents.ListByApplication(c.Context(), number)
	if err != nil {
		return handlers.BusinessError(c, err)
	}

	return response.Success(c, documents)
}

// Download handles GET /api/v1/documents/:id/download
func (h *DocumentHandler) Download(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid document ID")
	}

	document, content, err := h.documents.GetDocumentContent(c.Context(), uint(id))
	if err != nil {
		return handlers.BusinessError(c, err)
	}

	c.Set(fiber.HeaderContentType, document.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+document.Name+`"`)
	return c.Send(content)
}
