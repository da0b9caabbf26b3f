package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cppla/intranet/models"
)

func createPost(t *testing.T, svc *PostService, title string, files ...Upload) *PostDetail {
	t.Helper()
	p, err := svc.CreatePost(PostInput{Title: title, Author: "hr-team", Files: files})
	require.NoError(t, err)
	return p
}

func TestCreatePostDerivesAttachmentMetadata(t *testing.T) {
	svc := NewPostService(newTestDB(t))

	post, err := svc.CreatePost(PostInput{
		Title:        "Office closed on Friday",
		Author:       "hr-team",
		Description:  strPtr("<p>Enjoy the long weekend</p>"),
		AnnounceType: strPtr("holiday"),
		Files: []Upload{
			{Filename: "banner.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}},
			{Filename: "notice.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.7 body")},
			{Filename: "blob", Data: []byte("xyz")},
		},
	})
	require.NoError(t, err)

	assert.NotZero(t, post.ID)
	assert.Equal(t, "holiday", *post.AnnounceType)
	require.Len(t, post.Attachments, 3)
	assert.Equal(t, 4, post.Attachments[0].Size)
	assert.True(t, post.Attachments[0].IsImage)
	assert.Equal(t, 13, post.Attachments[1].Size)
	assert.False(t, post.Attachments[1].IsImage)
	assert.Equal(t, "application/octet-stream", post.Attachments[2].ContentType)
	for _, a := range post.Attachments {
		assert.Nil(t, a.Data, "listing must not carry attachment bytes")
	}

	assert.Empty(t, post.Reactions)
	assert.NotNil(t, post.Reactions)
	assert.Zero(t, post.ViewsCount)
	assert.Zero(t, post.RepliesCount)
	assert.Zero(t, post.SharesCount)
	assert.Equal(t, []string{}, post.LikedUsers)
}

func TestCreatePostValidation(t *testing.T) {
	svc := NewPostService(newTestDB(t))
	_, err := svc.CreatePost(PostInput{})
	requireInvalid(t, err, "title", "author")
}

func TestCreatePostIsAtomic(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_attachments", func(tx *gorm.DB) {
		if tx.Statement.Table == "post_attachments" {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))
	svc := NewPostService(db)

	_, err := svc.CreatePost(PostInput{
		Title:  "Will not survive",
		Author: "hr-team",
		Files:  []Upload{{Filename: "a.txt", ContentType: "text/plain", Data: []byte("a")}},
	})
	require.Error(t, err)

	var posts int64
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	assert.Zero(t, posts)
}

func TestLikedUsersCaseInsensitiveWithoutDedup(t *testing.T) {
	svc := NewPostService(newTestDB(t))
	post := createPost(t, svc, "Town hall")

	for _, r := range [][2]string{{"alice", "like"}, {"bob", "love"}, {"alice", "Like"}} {
		_, err := svc.AddReaction(post.ID, r[0], r[1])
		require.NoError(t, err)
	}

	got, err := svc.GetPost(post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "alice"}, got.LikedUsers)
	require.Len(t, got.Reactions, 3)
	assert.Equal(t, "bob", got.Reactions[1].User)
	assert.Equal(t, "love", got.Reactions[1].Reaction)
}

func TestLikedUsersHelper(t *testing.T) {
	reactions := []models.Reaction{
		{User: "carol", Reaction: "LIKE"},
		{User: "dan", Reaction: "likes"},
		{User: "erin", Reaction: "like"},
	}
	assert.Equal(t, []string{"carol", "erin"}, LikedUsers(reactions))
	assert.Equal(t, []string{}, LikedUsers(nil))
}

func TestCountsAreNotDeduplicated(t *testing.T) {
	svc := NewPostService(newTestDB(t))
	post := createPost(t, svc, "Benefits update")

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.AddView(post.ID, "alice"))
	}
	_, err := svc.AddReply(post.ID, "bob", "Thanks!")
	require.NoError(t, err)
	_, err = svc.AddReply(post.ID, "bob", "One more question")
	require.NoError(t, err)
	_, err = svc.AddShare(post.ID, "carol", strPtr("teams"))
	require.NoError(t, err)
	share, err := svc.AddShare(post.ID, "carol", nil)
	require.NoError(t, err)
	assert.Nil(t, share.Platform)

	got, err := svc.GetPost(post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.ViewsCount)
	assert.EqualValues(t, 2, got.RepliesCount)
	assert.EqualValues(t, 2, got.SharesCount)

	replies, err := svc.ListReplies(post.ID)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, "Thanks!", replies[0].Content)
}

func TestChildInsertsRequirePost(t *testing.T) {
	svc := NewPostService(newTestDB(t))

	_, err := svc.AddReply(42, "bob", "hi")
	requireNotFound(t, err, "Post")
	_, err = svc.AddShare(42, "bob", nil)
	requireNotFound(t, err, "Post")
	_, err = svc.AddReaction(42, "bob", "like")
	requireNotFound(t, err, "Post")
	err = svc.AddView(42, "bob")
	requireNotFound(t, err, "Post")
	_, err = svc.ListReplies(42)
	requireNotFound(t, err, "Post")
	_, err = svc.GetPost(42)
	requireNotFound(t, err, "Post")
	err = svc.DeletePost(42)
	requireNotFound(t, err, "Post")

	_, err = svc.AddReaction(42, "", "")
	requireInvalid(t, err, "user", "reaction")
}

func TestDeletePostCascades(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(db)
	post := createPost(t, svc, "Old news", Upload{Filename: "a.txt", ContentType: "text/plain", Data: []byte("a")})
	keep := createPost(t, svc, "Still here")

	for _, id := range []uint{post.ID, keep.ID} {
		_, err := svc.AddReply(id, "u", "c")
		require.NoError(t, err)
		_, err = svc.AddShare(id, "u", nil)
		require.NoError(t, err)
		_, err = svc.AddReaction(id, "u", "like")
		require.NoError(t, err)
		require.NoError(t, svc.AddView(id, "u"))
	}
	attID := post.Attachments[0].ID

	require.NoError(t, svc.DeletePost(post.ID))

	for _, child := range models.PostChildTables {
		var n int64
		require.NoError(t, db.Model(child.Model).Where("post_id = ?", post.ID).Count(&n).Error)
		assert.Zero(t, n, child.Name)
	}
	_, err := svc.GetPost(post.ID)
	requireNotFound(t, err, "Post")
	_, err = svc.GetAttachment(post.ID, attID)
	requireNotFound(t, err, "Attachment")

	survivor, err := svc.GetPost(keep.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, survivor.RepliesCount)
	assert.EqualValues(t, 1, survivor.ViewsCount)
	assert.Equal(t, []string{"u"}, survivor.LikedUsers)
}

func TestGetAttachmentRequiresMatchingPost(t *testing.T) {
	svc := NewPostService(newTestDB(t))
	owner := createPost(t, svc, "With file", Upload{Filename: "handbook.pdf", ContentType: "application/pdf", Data: []byte("pdf bytes")})
	other := createPost(t, svc, "Without file")
	attID := owner.Attachments[0].ID

	att, err := svc.GetAttachment(owner.ID, attID)
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf bytes"), att.Data)
	assert.Equal(t, "application/pdf", att.ContentType)
	assert.Equal(t, "handbook.pdf", att.Filename)

	_, err = svc.GetAttachment(other.ID, attID)
	requireNotFound(t, err, "Attachment")
}

func TestUpdatePostPartialAndAppendOnly(t *testing.T) {
	svc := NewPostService(newTestDB(t))
	post, err := svc.CreatePost(PostInput{
		Title:       "Draft",
		Author:      "hr-team",
		Description: strPtr("original"),
		Files:       []Upload{{Filename: "one.txt", ContentType: "text/plain", Data: []byte("1")}},
	})
	require.NoError(t, err)

	updated, err := svc.UpdatePost(post.ID, PostPatch{
		Title: strPtr("Final"),
		Files: []Upload{{Filename: "two.jpg", ContentType: "image/jpeg", Data: []byte("22")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, "original", *updated.Description)
	assert.Equal(t, "hr-team", updated.Author)
	assert.Nil(t, updated.AnnounceType)
	require.Len(t, updated.Attachments, 2)
	assert.Equal(t, "one.txt", updated.Attachments[0].Filename)
	assert.Equal(t, "two.jpg", updated.Attachments[1].Filename)
	assert.True(t, updated.Attachments[1].IsImage)

	_, err = svc.UpdatePost(post.ID, PostPatch{Title: strPtr("")})
	requireInvalid(t, err, "title")
	_, err = svc.UpdatePost(999, PostPatch{Title: strPtr("x")})
	requireNotFound(t, err, "Post")
}

func TestListPostsNewestFirst(t *testing.T) {
	svc := NewPostService(newTestDB(t))
	first := createPost(t, svc, "first")
	second := createPost(t, svc, "second")
	_, err := svc.AddReaction(first.ID, "zoe", "like")
	require.NoError(t, err)

	page, err := svc.ListPosts(Page{Skip: 0, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, second.ID, page.Posts[0].ID)
	assert.Equal(t, first.ID, page.Posts[1].ID)
	assert.Equal(t, []string{"zoe"}, page.Posts[1].LikedUsers)

	page, err = svc.ListPosts(Page{Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, first.ID, page.Posts[0].ID)

	_, err = svc.ListPosts(Page{Skip: 0, Limit: 1001})
	requireInvalid(t, err, "limit")
}
