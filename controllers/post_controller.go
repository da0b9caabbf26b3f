package controllers

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/cppla/intranet/middleware"
	"github.com/cppla/intranet/services"
	"github.com/cppla/intranet/utils"
)

// filesField is the multipart field carrying post attachments.
const filesField = "files"

// PostController manages posts, their attachments and engagement rows.
type PostController struct {
	maxUploadBytes int64
}

// NewPostController creates a new PostController instance.
func NewPostController(maxUploadBytes int64) *PostController {
	return &PostController{maxUploadBytes: maxUploadBytes}
}

func (p *PostController) service(ctx *gin.Context) *services.PostService {
	return services.NewPostService(middleware.Session(ctx))
}

type postCreateForm struct {
	Title        string  `form:"title" binding:"required"`
	Author       string  `form:"author" binding:"required"`
	Description  *string `form:"description"`
	AnnounceType *string `form:"announce_type"`
}

type postUpdateForm struct {
	Title        *string `form:"title"`
	Description  *string `form:"description"`
	AnnounceType *string `form:"announce_type"`
}

type replyForm struct {
	User    string `form:"user" binding:"required"`
	Content string `form:"content" binding:"required"`
}

type shareForm struct {
	User     string  `form:"user" binding:"required"`
	Platform *string `form:"platform"`
}

type reactionForm struct {
	User     string `form:"user" binding:"required"`
	Reaction string `form:"reaction" binding:"required"`
}

type viewForm struct {
	User string `form:"user" binding:"required"`
}

// bindForm accepts both multipart and urlencoded bodies.
func bindForm(ctx *gin.Context, obj interface{}) bool {
	if err := ctx.ShouldBindWith(obj, binding.Form); err != nil {
		utils.ValidationFailed(ctx, bindError(err, "form"))
		return false
	}
	return true
}

// readUploads fully reads every uploaded file. Sizes are taken from the bytes
// received, not from the part headers.
func (p *PostController) readUploads(ctx *gin.Context) ([]services.Upload, error) {
	form := ctx.Request.MultipartForm
	if form == nil {
		return nil, nil
	}
	headers := form.File[filesField]
	uploads := make([]services.Upload, 0, len(headers))
	for _, fh := range headers {
		data, err := p.readPart(fh)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, services.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return uploads, nil
}

func (p *PostController) readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, p.maxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > p.maxUploadBytes {
		return nil, services.Invalid(filesField,
			fmt.Sprintf("%s exceeds %d MB", fh.Filename, p.maxUploadBytes/(1024*1024)))
	}
	return data, nil
}

// CreatePost creates a post and its attachments from a multipart form.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req postCreateForm
	if !bindForm(ctx, &req) {
		return
	}
	files, err := p.readUploads(ctx)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	post, err := p.service(ctx).CreatePost(services.PostInput{
		Title:        strings.TrimSpace(req.Title),
		Author:       strings.TrimSpace(req.Author),
		Description:  utils.SanitizePtr(req.Description),
		AnnounceType: req.AnnounceType,
		Files:        files,
	})
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, post)
}

// ListPosts returns annotated posts, newest first.
func (p *PostController) ListPosts(ctx *gin.Context) {
	var q pageQuery
	if !bindPage(ctx, &q) {
		return
	}
	page, err := p.service(ctx).ListPosts(q.page())
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, page)
}

// GetPost returns one annotated post.
func (p *PostController) GetPost(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	post, err := p.service(ctx).GetPost(id)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, post)
}

// UpdatePost changes the supplied fields and appends any uploaded files.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req postUpdateForm
	if !bindForm(ctx, &req) {
		return
	}
	files, err := p.readUploads(ctx)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	patch := services.PostPatch{
		Description:  utils.SanitizePtr(req.Description),
		AnnounceType: req.AnnounceType,
		Files:        files,
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		patch.Title = &title
	}
	post, err := p.service(ctx).UpdatePost(id, patch)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, post)
}

// DeletePost removes a post with everything attached to it.
func (p *PostController) DeletePost(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if err := p.service(ctx).DeletePost(id); err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetAttachment streams the stored bytes of one attachment inline.
func (p *PostController) GetAttachment(ctx *gin.Context) {
	postID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	attID, ok := paramID(ctx, "att_id")
	if !ok {
		return
	}
	att, err := p.service(ctx).GetAttachment(postID, attID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	disposition := mime.FormatMediaType("inline", map[string]string{"filename": att.Filename})
	if disposition == "" {
		disposition = "inline"
	}
	ctx.Header("Content-Disposition", disposition)
	ctx.Data(http.StatusOK, att.ContentType, att.Data)
}

// ListReplies returns the replies of a post.
func (p *PostController) ListReplies(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	replies, err := p.service(ctx).ListReplies(id)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, replies)
}

// AddReply appends a reply to a post.
func (p *PostController) AddReply(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req replyForm
	if !bindForm(ctx, &req) {
		return
	}
	reply, err := p.service(ctx).AddReply(id, req.User, req.Content)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, reply)
}

// AddShare records a share of a post.
func (p *PostController) AddShare(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req shareForm
	if !bindForm(ctx, &req) {
		return
	}
	share, err := p.service(ctx).AddShare(id, req.User, req.Platform)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, share)
}

// AddReaction records a reaction to a post.
func (p *PostController) AddReaction(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req reactionForm
	if !bindForm(ctx, &req) {
		return
	}
	reaction, err := p.service(ctx).AddReaction(id, req.User, req.Reaction)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, reaction)
}

// AddView records that a user opened a post.
func (p *PostController) AddView(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req viewForm
	if !bindForm(ctx, &req) {
		return
	}
	if err := p.service(ctx).AddView(id, req.User); err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"status": "ok"})
}
