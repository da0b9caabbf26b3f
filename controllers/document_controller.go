package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/intranet/middleware"
	"github.com/cppla/intranet/services"
	"github.com/cppla/intranet/utils"
)

// DocumentController exposes HR policy documents.
type DocumentController struct{}

// NewDocumentController creates a new DocumentController instance.
func NewDocumentController() *DocumentController {
	return &DocumentController{}
}

func (d *DocumentController) service(ctx *gin.Context) *services.DocumentService {
	return services.NewDocumentService(middleware.Session(ctx))
}

type documentCreateRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description *string `json:"description"`
	Link        string  `json:"link" binding:"required,max=500"`
	Location    string  `json:"location" binding:"max=100"`
}

// Pointer fields distinguish "not sent" from "sent"; only sent fields are applied.
type documentUpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Link        *string `json:"link" binding:"omitempty,min=1,max=500"`
	Location    *string `json:"location" binding:"omitempty,min=1,max=100"`
}

type documentListQuery struct {
	pageQuery
	Location string `form:"location"`
}

// CreateDocument stores a new document.
func (d *DocumentController) CreateDocument(ctx *gin.Context) {
	var req documentCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(ctx, bindError(err, "body"))
		return
	}
	doc, err := d.service(ctx).Create(services.DocumentInput{
		Name:        req.Name,
		Description: req.Description,
		Link:        req.Link,
		Location:    req.Location,
	})
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, doc)
}

// ListDocuments returns a page of documents, optionally filtered by location.
func (d *DocumentController) ListDocuments(ctx *gin.Context) {
	var q documentListQuery
	if !bindPage(ctx, &q) {
		return
	}
	page, err := d.service(ctx).List(q.page(), q.Location)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, page)
}

// GetDocument returns one document.
func (d *DocumentController) GetDocument(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	doc, err := d.service(ctx).Get(id)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, doc)
}

// UpdateDocument applies a partial update.
func (d *DocumentController) UpdateDocument(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req documentUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(ctx, bindError(err, "body"))
		return
	}
	doc, err := d.service(ctx).Update(id, services.DocumentPatch{
		Name:        req.Name,
		Description: req.Description,
		Link:        req.Link,
		Location:    req.Location,
	})
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, doc)
}

// DeleteDocument removes a document.
func (d *DocumentController) DeleteDocument(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if err := d.service(ctx).Delete(id); err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetDocumentLink returns only the link, for clients that open the file directly.
func (d *DocumentController) GetDocumentLink(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	link, err := d.service(ctx).GetLink(id)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"link": link})
}
