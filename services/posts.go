package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/intranet/models"
)

const (
	maxPostTitle        = 255
	maxPostAuthor       = 200
	maxAnnounceType     = 50
	maxUser             = 200
	maxReaction         = 50
	maxPlatform         = 120
	maxFilename         = 255
	maxContentType      = 120
	defaultUploadedName = "upload"
)

// PostService owns posts and every row that hangs off them.
type PostService struct {
	db *gorm.DB
}

// NewPostService binds the service to a request scoped session.
func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db}
}

// Upload is a fully received file. Its size is len(Data).
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PostInput is the payload for CreatePost.
type PostInput struct {
	Title        string
	Author       string
	Description  *string
	AnnounceType *string
	Files        []Upload
}

// PostPatch changes the supplied fields and appends Files as new attachments.
type PostPatch struct {
	Title        *string
	Description  *string
	AnnounceType *string
	Files        []Upload
}

// PostDetail is a post with its read-time aggregates.
type PostDetail struct {
	ID           uint                `json:"id"`
	Title        string              `json:"title"`
	Description  *string             `json:"description"`
	Author       string              `json:"author"`
	AnnounceType *string             `json:"announce_type"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Attachments  []models.Attachment `json:"attachments"`
	Reactions    []models.Reaction   `json:"reactions"`
	ViewsCount   int64               `json:"views_count"`
	RepliesCount int64               `json:"replies_count"`
	SharesCount  int64               `json:"shares_count"`
	LikedUsers   []string            `json:"liked_users"`
}

// PostPage is one page of annotated posts plus the total post count.
type PostPage struct {
	Total int64        `json:"total"`
	Posts []PostDetail `json:"posts"`
}

func checkUploads(c *fieldChecker, files []Upload) {
	for _, f := range files {
		c.optional("files", f.Filename, maxFilename)
		c.optional("files", f.ContentType, maxContentType)
	}
}

func (in PostInput) validate() error {
	var c fieldChecker
	c.text("title", in.Title, maxPostTitle)
	c.text("author", in.Author, maxPostAuthor)
	if in.AnnounceType != nil {
		c.optional("announce_type", *in.AnnounceType, maxAnnounceType)
	}
	checkUploads(&c, in.Files)
	return c.err()
}

func (p PostPatch) validate() error {
	var c fieldChecker
	if p.Title != nil {
		c.text("title", *p.Title, maxPostTitle)
	}
	if p.AnnounceType != nil {
		c.optional("announce_type", *p.AnnounceType, maxAnnounceType)
	}
	checkUploads(&c, p.Files)
	return c.err()
}

// CreatePost writes the post and all of its attachments in one transaction.
func (s *PostService) CreatePost(in PostInput) (*PostDetail, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	post := models.Post{
		Title:        in.Title,
		Author:       in.Author,
		Description:  in.Description,
		AnnounceType: in.AnnounceType,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		return addAttachments(tx, post.ID, in.Files)
	})
	if err != nil {
		return nil, err
	}
	return s.annotate(&post)
}

func addAttachments(tx *gorm.DB, postID uint, files []Upload) error {
	for _, f := range files {
		name := f.Filename
		if name == "" {
			name = defaultUploadedName
		}
		att := models.NewAttachment(postID, name, f.ContentType, f.Data)
		if err := tx.Create(&att).Error; err != nil {
			return err
		}
	}
	return nil
}

// ListPosts returns posts newest first, each annotated.
func (s *PostService) ListPosts(page Page) (*PostPage, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	var total int64
	if err := s.db.Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, err
	}
	var posts []models.Post
	if err := s.db.Order("created_at DESC").Order("id DESC").Offset(page.Skip).Limit(page.Limit).Find(&posts).Error; err != nil {
		return nil, err
	}
	out := make([]PostDetail, 0, len(posts))
	for i := range posts {
		d, err := s.annotate(&posts[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return &PostPage{Total: total, Posts: out}, nil
}

// GetPost returns one annotated post.
func (s *PostService) GetPost(id uint) (*PostDetail, error) {
	post, err := s.loadPost(s.db, id)
	if err != nil {
		return nil, err
	}
	return s.annotate(post)
}

// UpdatePost applies a partial update and appends new attachments atomically.
// Existing attachments are never removed or replaced here.
func (s *PostService) UpdatePost(id uint, patch PostPatch) (*PostDetail, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}
	var post *models.Post
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		if post, err = s.loadPost(tx, id); err != nil {
			return err
		}
		if patch.Title != nil {
			post.Title = *patch.Title
		}
		if patch.Description != nil {
			post.Description = patch.Description
		}
		if patch.AnnounceType != nil {
			post.AnnounceType = patch.AnnounceType
		}
		if err := tx.Save(post).Error; err != nil {
			return err
		}
		return addAttachments(tx, post.ID, patch.Files)
	})
	if err != nil {
		return nil, err
	}
	return s.annotate(post)
}

// DeletePost removes the post and every row in models.PostChildTables that
// references it, inside one transaction.
func (s *PostService) DeletePost(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.loadPost(tx.Select("id"), id); err != nil {
			return err
		}
		for _, child := range models.PostChildTables {
			if err := tx.Where("post_id = ?", id).Delete(child.Model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

// GetAttachment returns an attachment including its bytes. Both ids must match.
func (s *PostService) GetAttachment(postID, attachmentID uint) (*models.Attachment, error) {
	var att models.Attachment
	err := s.db.Where("id = ? AND post_id = ?", attachmentID, postID).First(&att).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Attachment", ID: attachmentID}
		}
		return nil, err
	}
	return &att, nil
}

// ListReplies returns the replies of a post in the order they were written.
func (s *PostService) ListReplies(postID uint) ([]models.Reply, error) {
	if err := s.requirePost(postID); err != nil {
		return nil, err
	}
	replies := make([]models.Reply, 0)
	if err := s.db.Where("post_id = ?", postID).Order("id ASC").Find(&replies).Error; err != nil {
		return nil, err
	}
	return replies, nil
}

// AddReply appends a reply.
func (s *PostService) AddReply(postID uint, user, content string) (*models.Reply, error) {
	var c fieldChecker
	c.text("user", user, maxUser)
	c.text("content", content, 0)
	if err := c.err(); err != nil {
		return nil, err
	}
	r := models.Reply{PostID: postID, User: user, Content: content}
	if err := s.insertChild(postID, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// AddShare appends a share.
func (s *PostService) AddShare(postID uint, user string, platform *string) (*models.Share, error) {
	var c fieldChecker
	c.text("user", user, maxUser)
	if platform != nil {
		c.optional("platform", *platform, maxPlatform)
	}
	if err := c.err(); err != nil {
		return nil, err
	}
	sh := models.Share{PostID: postID, User: user, Platform: platform}
	if err := s.insertChild(postID, &sh); err != nil {
		return nil, err
	}
	return &sh, nil
}

// AddReaction appends a reaction; duplicates are kept.
func (s *PostService) AddReaction(postID uint, user, reaction string) (*models.Reaction, error) {
	var c fieldChecker
	c.text("user", user, maxUser)
	c.text("reaction", reaction, maxReaction)
	if err := c.err(); err != nil {
		return nil, err
	}
	r := models.Reaction{PostID: postID, User: user, Reaction: reaction}
	if err := s.insertChild(postID, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// AddView records one view by user.
func (s *PostService) AddView(postID uint, user string) error {
	var c fieldChecker
	c.text("user", user, maxUser)
	if err := c.err(); err != nil {
		return err
	}
	return s.insertChild(postID, &models.PostView{PostID: postID, User: user})
}

func (s *PostService) insertChild(postID uint, row interface{}) error {
	if err := s.requirePost(postID); err != nil {
		return err
	}
	return s.db.Create(row).Error
}

func (s *PostService) requirePost(id uint) error {
	_, err := s.loadPost(s.db.Select("id"), id)
	return err
}

func (s *PostService) loadPost(tx *gorm.DB, id uint) (*models.Post, error) {
	var post models.Post
	if err := tx.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Post", ID: id}
		}
		return nil, err
	}
	return &post, nil
}

// annotate computes the derived fields from the child tables on every call.
func (s *PostService) annotate(post *models.Post) (*PostDetail, error) {
	d := &PostDetail{
		ID:           post.ID,
		Title:        post.Title,
		Description:  post.Description,
		Author:       post.Author,
		AnnounceType: post.AnnounceType,
		CreatedAt:    post.CreatedAt,
		UpdatedAt:    post.UpdatedAt,
		Attachments:  make([]models.Attachment, 0),
		Reactions:    make([]models.Reaction, 0),
		LikedUsers:   make([]string, 0),
	}

	if err := s.db.Select(models.AttachmentMetaColumns).Where("post_id = ?", post.ID).Order("id ASC").Find(&d.Attachments).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("post_id = ?", post.ID).Order("id ASC").Find(&d.Reactions).Error; err != nil {
		return nil, err
	}
	counts := []struct {
		model interface{}
		dst   *int64
	}{
		{&models.PostView{}, &d.ViewsCount},
		{&models.Reply{}, &d.RepliesCount},
		{&models.Share{}, &d.SharesCount},
	}
	for _, c := range counts {
		if err := s.db.Model(c.model).Where("post_id = ?", post.ID).Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	d.LikedUsers = LikedUsers(d.Reactions)
	return d, nil
}

// LikedUsers returns the user of every "like" reaction, case-insensitive, in
// reaction order. Repeated likes by one user appear repeatedly.
func LikedUsers(reactions []models.Reaction) []string {
	users := make([]string, 0)
	for _, r := range reactions {
		if r.IsLike() {
			users = append(users, r.User)
		}
	}
	return users
}
