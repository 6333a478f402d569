package models

import "time"

// Post is a feed entry. A share is a post whose OriginalPostID points at the shared root.
type Post struct {
	ID             int64       `json:"id" db:"id"`
	UserID         int64       `json:"userId" db:"user_id"`
	Content        string      `json:"content" db:"content"`
	Image          *string     `json:"image" db:"image"`
	MediaType      *string     `json:"mediaType" db:"media_type"`
	OriginalPostID *int64      `json:"originalPostId" db:"original_post_id"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"`
	Author         UserSummary `json:"author"`
	LikeCount      int         `json:"likeCount"`
	CommentCount   int         `json:"commentCount"`
	ShareCount     int         `json:"shareCount"`
	LikedByViewer  bool        `json:"userLiked"`
	OriginalPost   *Post       `json:"-"`
}

// PostDetail is a post with its comments, oldest first
type PostDetail struct {
	Post
	Comments []*Comment
}

// Comment is a reply on a post
type Comment struct {
	ID        int64       `json:"id" db:"id"`
	PostID    int64       `json:"postId" db:"post_id"`
	UserID    int64       `json:"userId" db:"user_id"`
	Content   string      `json:"content" db:"content"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	Author    UserSummary `json:"author"`
}

// PostFilter narrows a feed query
type PostFilter struct {
	ViewerID int64
	AuthorID *int64
	Hashtag  string
	Offset   uint64
	Limit    uint64
}
