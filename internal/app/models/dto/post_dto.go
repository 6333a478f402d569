package dto

import (
	"time"

	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/pkg/validation"
)

// CreatePostRequest is the text part of a new post. It binds from JSON or
// from the fields of a multipart form carrying an image.
type CreatePostRequest struct {
	Content string `json:"content" form:"content"`
}

// CommentRequest is the body of a new comment
type CommentRequest struct {
	Content string `json:"content"`
}

// SharePostRequest carries the optional caption of a repost
type SharePostRequest struct {
	Content string `json:"content"`
}

// OriginalPostResponse summarises the root post of a share
type OriginalPostResponse struct {
	ID          int64     `json:"id"`
	Content     string    `json:"content"`
	Image       *string   `json:"image"`
	MediaType   string    `json:"mediaType"`
	CreatedAt   time.Time `json:"createdAt"`
	AuthorID    int64     `json:"authorId"`
	AuthorName  string    `json:"authorName"`
	AuthorPhoto *string   `json:"authorPhoto"`
}

// PostResponse is a feed entry as seen by a viewer
type PostResponse struct {
	ID           int64                 `json:"id"`
	UserID       int64                 `json:"userId"`
	Content      string                `json:"content"`
	Image        *string               `json:"image"`
	MediaType    string                `json:"mediaType"`
	CreatedAt    time.Time             `json:"createdAt"`
	AuthorName   string                `json:"authorName"`
	AuthorPhoto  *string               `json:"authorPhoto"`
	LikeCount    int                   `json:"likeCount"`
	CommentCount int                   `json:"commentCount"`
	ShareCount   int                   `json:"shareCount"`
	UserLiked    bool                  `json:"userLiked"`
	Hashtags     []string              `json:"hashtags"`
	IsOwnPost    bool                  `json:"isOwnPost"`
	OriginalPost *OriginalPostResponse `json:"originalPost"`
}

func mediaTypeOf(p *models.Post) string {
	if p.MediaType != nil && *p.MediaType != "" {
		return *p.MediaType
	}
	return "image"
}

// NewPostResponse maps a post for viewerID
func NewPostResponse(p *models.Post, viewerID int64) PostResponse {
	resp := PostResponse{
		ID:           p.ID,
		UserID:       p.UserID,
		Content:      p.Content,
		Image:        p.Image,
		MediaType:    mediaTypeOf(p),
		CreatedAt:    p.CreatedAt,
		AuthorName:   p.Author.Name,
		AuthorPhoto:  p.Author.ProfilePhoto,
		LikeCount:    p.LikeCount,
		CommentCount: p.CommentCount,
		ShareCount:   p.ShareCount,
		UserLiked:    p.LikedByViewer,
		Hashtags:     validation.ExtractHashtags(p.Content),
		IsOwnPost:    p.UserID == viewerID,
	}
	if o := p.OriginalPost; o != nil {
		resp.OriginalPost = &OriginalPostResponse{
			ID:          o.ID,
			Content:     o.Content,
			Image:       o.Image,
			MediaType:   mediaTypeOf(o),
			CreatedAt:   o.CreatedAt,
			AuthorID:    o.UserID,
			AuthorName:  o.Author.Name,
			AuthorPhoto: o.Author.ProfilePhoto,
		}
	}
	return resp
}

// NewPostResponses maps a feed page
func NewPostResponses(posts []*models.Post, viewerID int64) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, NewPostResponse(p, viewerID))
	}
	return out
}

// CommentResponse is a comment as seen by a viewer
type CommentResponse struct {
	ID           int64     `json:"id"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
	UserID       int64     `json:"userId"`
	AuthorName   string    `json:"authorName"`
	AuthorPhoto  *string   `json:"authorPhoto"`
	IsOwnComment bool      `json:"isOwnComment"`
}

// NewCommentResponse maps a comment for viewerID
func NewCommentResponse(c *models.Comment, viewerID int64) CommentResponse {
	return CommentResponse{
		ID:           c.ID,
		Content:      c.Content,
		CreatedAt:    c.CreatedAt,
		UserID:       c.UserID,
		AuthorName:   c.Author.Name,
		AuthorPhoto:  c.Author.ProfilePhoto,
		IsOwnComment: c.UserID == viewerID,
	}
}

// PostDetailResponse is a post with its comments
type PostDetailResponse struct {
	PostResponse
	Comments []CommentResponse `json:"comments"`
}

// NewPostDetailResponse maps a post detail for viewerID
func NewPostDetailResponse(d *models.PostDetail, viewerID int64) *PostDetailResponse {
	resp := &PostDetailResponse{
		PostResponse: NewPostResponse(&d.Post, viewerID),
		Comments:     make([]CommentResponse, 0, len(d.Comments)),
	}
	for _, c := range d.Comments {
		resp.Comments = append(resp.Comments, NewCommentResponse(c, viewerID))
	}
	return resp
}

// CommentCreatedResponse is returned after commenting
type CommentCreatedResponse struct {
	Comment      CommentResponse `json:"comment"`
	CommentCount int             `json:"commentCount"`
}

// LikeResponse is returned after liking or unliking
type LikeResponse struct {
	Message   string `json:"message"`
	LikeCount int    `json:"likeCount"`
	UserLiked bool   `json:"userLiked"`
}

// ShareResponse is the created repost plus the root's updated share count
type ShareResponse struct {
	PostResponse
	OriginalShareCount int `json:"originalShareCount"`
}
