package models

import (
	"strings"
	"time"
)

// Post is an announcement and the aggregate root of its engagement rows.
type Post struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Title        string       `gorm:"size:255;not null" json:"title"`
	Description  *string      `gorm:"type:text" json:"description"`
	Author       string       `gorm:"size:200;not null;index" json:"author"`
	AnnounceType *string      `gorm:"size:50" json:"announce_type"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
	Attachments  []Attachment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Reactions    []Reaction   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Views        []PostView   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Replies      []Reply      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Shares       []Share      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// Attachment stores an uploaded file inline. Size and IsImage are derived from Data.
type Attachment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PostID      uint      `gorm:"index;not null" json:"-"`
	Filename    string    `gorm:"size:255;not null" json:"filename"`
	ContentType string    `gorm:"size:120;not null" json:"content_type"`
	Size        int       `gorm:"not null" json:"size"`
	IsImage     bool      `gorm:"default:false" json:"is_image"`
	Data        []byte    `gorm:"not null" json:"-"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (Attachment) TableName() string { return "post_attachments" }

// NewAttachment builds an attachment whose metadata comes from the received bytes,
// never from client supplied headers.
func NewAttachment(postID uint, filename, contentType string, data []byte) Attachment {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if data == nil {
		data = []byte{}
	}
	return Attachment{
		PostID:      postID,
		Filename:    filename,
		ContentType: contentType,
		Size:        len(data),
		IsImage:     strings.HasPrefix(contentType, "image/"),
		Data:        data,
	}
}

// AttachmentMetaColumns selects everything except the blob.
var AttachmentMetaColumns = []string{"id", "post_id", "filename", "content_type", "size", "is_image", "created_at"}

// Reaction is one user's reaction; the same user may react any number of times.
type Reaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"index;not null" json:"-"`
	User      string    `gorm:"size:200;not null" json:"user"`
	Reaction  string    `gorm:"size:50;not null" json:"reaction"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Reaction) TableName() string { return "post_reactions" }

// IsLike reports whether the reaction counts towards liked_users.
func (r Reaction) IsLike() bool {
	return strings.EqualFold(r.Reaction, "like")
}

// PostView records a single view; repeated views are separate rows.
type PostView struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	PostID   uint      `gorm:"index;not null" json:"-"`
	User     string    `gorm:"size:200;not null" json:"user"`
	ViewedAt time.Time `gorm:"not null;autoCreateTime" json:"viewed_at"`
}

func (PostView) TableName() string { return "post_views" }

// Reply is a threaded answer to a post.
type Reply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"index;not null" json:"-"`
	User      string    `gorm:"size:200;not null" json:"user"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Reply) TableName() string { return "post_replies" }

// Share records that a user shared the post, optionally to a platform.
type Share struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"index;not null" json:"-"`
	User      string    `gorm:"size:200;not null" json:"user"`
	Platform  *string   `gorm:"size:120" json:"platform"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Share) TableName() string { return "post_shares" }

// ChildTable describes one table owned by Post through post_id.
type ChildTable struct {
	Name  string
	Model interface{}
}

// PostChildTables lists every table removed together with its parent post.
var PostChildTables = []ChildTable{
	{Name: "post_attachments", Model: &Attachment{}},
	{Name: "post_reactions", Model: &Reaction{}},
	{Name: "post_views", Model: &PostView{}},
	{Name: "post_replies", Model: &Reply{}},
	{Name: "post_shares", Model: &Share{}},
}

// All returns the models to migrate, parents first.
func All() []interface{} {
	all := []interface{}{&Document{}, &Post{}}
	for _, c := range PostChildTables {
		all = append(all, c.Model)
	}
	return all
}
