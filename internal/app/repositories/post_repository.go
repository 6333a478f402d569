package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/db"
	"github.com/yigit/campusconnect/internal/pkg/dberrors"
)

const likesPostUserKey = "likes_post_user_key"

// PostRepository handles database operations for posts, likes, comments and shares
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

// postSelect selects posts with their author, counters, the viewer's like
// and the root post of a share
func postSelect(viewerID int64) squirrel.SelectBuilder {
	return squirrel.Select(
		"p.id", "p.user_id", "p.content", "p.image", "p.media_type", "p.original_post_id", "p.created_at",
		"u.id", "u.name", "u.branch", "u.year", "u.profile_photo",
		"(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id)",
		"(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id)",
		"(SELECT COUNT(*) FROM shares s WHERE s.post_id = p.id)",
		"o.id", "o.content", "o.image", "o.media_type", "o.created_at",
		"ou.id", "ou.name", "ou.profile_photo",
	).
		Column(squirrel.Expr("EXISTS (SELECT 1 FROM likes vl WHERE vl.post_id = p.id AND vl.user_id = ?)", viewerID)).
		From("posts p").
		Join("users u ON u.id = p.user_id").
		LeftJoin("posts o ON o.id = p.original_post_id").
		LeftJoin("users ou ON ou.id = o.user_id").
		PlaceholderFormat(squirrel.Dollar)
}

func scanPost(row pgx.Row) (*models.Post, error) {
	var (
		p             models.Post
		origID        *int64
		origContent   *string
		origImage     *string
		origMediaType *string
		origCreatedAt *time.Time
		origAuthorID  *int64
		origAuthor    *string
		origPhoto     *string
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.Content, &p.Image, &p.MediaType, &p.OriginalPostID, &p.CreatedAt,
		&p.Author.ID, &p.Author.Name, &p.Author.Branch, &p.Author.Year, &p.Author.ProfilePhoto,
		&p.LikeCount, &p.CommentCount, &p.ShareCount,
		&origID, &origContent, &origImage, &origMediaType, &origCreatedAt,
		&origAuthorID, &origAuthor, &origPhoto,
		&p.LikedByViewer,
	)
	if err != nil {
		return nil, err
	}

	if origID != nil {
		orig := &models.Post{
			ID:        *origID,
			Image:     origImage,
			MediaType: origMediaType,
		}
		if origContent != nil {
			orig.Content = *origContent
		}
		if origCreatedAt != nil {
			orig.CreatedAt = *origCreatedAt
		}
		if origAuthorID != nil {
			orig.UserID = *origAuthorID
			orig.Author = models.UserSummary{ID: *origAuthorID, ProfilePhoto: origPhoto}
			if origAuthor != nil {
				orig.Author.Name = *origAuthor
			}
		}
		p.OriginalPost = orig
	}

	return &p, nil
}

// Create inserts a post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO posts (user_id, content, image, media_type, original_post_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		post.UserID, post.Content, post.Image, post.MediaType, post.OriginalPostID,
	).Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating post: %w", err)
	}
	return nil
}

// GetByID retrieves a post as seen by viewerID
func (r *PostRepository) GetByID(ctx context.Context, id, viewerID int64) (*models.Post, error) {
	sql, args, err := postSelect(viewerID).Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	post, err := scanPost(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFoundOr(err, "error retrieving post")
	}
	return post, nil
}

// List returns a feed page, newest first
func (r *PostRepository) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	query := postSelect(filter.ViewerID).
		OrderBy("p.created_at DESC", "p.id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit)

	if filter.AuthorID != nil {
		query = query.Where(squirrel.Eq{"p.user_id": *filter.AuthorID})
	}
	if filter.Hashtag != "" {
		query = query.Where(squirrel.Like{"LOWER(p.content)": "%#" + filter.Hashtag + "%"})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	posts := make([]*models.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning post row: %w", err)
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

// Delete removes a post; likes, comments and shares cascade
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByUser counts the posts authored by userID
func (r *PostRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting posts: %w", err)
	}
	return count, nil
}

// Like records a like. ErrDuplicate means the user already liked the post.
func (r *PostRepository) Like(ctx context.Context, postID, userID int64) error {
	_, err := r.db.Exec(ctx, `INSERT INTO likes (post_id, user_id) VALUES ($1, $2)`, postID, userID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, likesPostUserKey) {
			return ErrDuplicate
		}
		if dberrors.IsForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("error liking post: %w", err)
	}
	return nil
}

// Unlike removes a like and reports whether one existed
func (r *PostRepository) Unlike(ctx context.Context, postID, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("error unliking post: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CountLikes counts the likes of a post
func (r *PostRepository) CountLikes(ctx context.Context, postID int64) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting likes: %w", err)
	}
	return count, nil
}

// AddComment inserts a comment, fills in its author and returns the post's new comment count
func (r *PostRepository) AddComment(ctx context.Context, comment *models.Comment) (int, error) {
	var count int

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO comments (post_id, user_id, content)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`,
			comment.PostID, comment.UserID, comment.Content).Scan(&comment.ID, &comment.CreatedAt)
		if err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return ErrNotFound
			}
			return fmt.Errorf("error creating comment: %w", err)
		}

		err = tx.QueryRow(ctx,
			`SELECT id, name, branch, year, profile_photo FROM users WHERE id = $1`, comment.UserID,
		).Scan(summaryDest(&comment.Author)...)
		if err != nil {
			return fmt.Errorf("error loading comment author: %w", err)
		}

		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM comments WHERE post_id = $1`, comment.PostID).Scan(&count); err != nil {
			return fmt.Errorf("error counting comments: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// ListComments returns the comments of a post, oldest first
func (r *PostRepository) ListComments(ctx context.Context, postID int64) ([]*models.Comment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.post_id, c.user_id, c.content, c.created_at,
			u.id, u.name, u.branch, u.year, u.profile_photo
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC, c.id ASC`,
		postID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		dest := append([]any{&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt}, summaryDest(&c.Author)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning comment row: %w", err)
		}
		comments = append(comments, &c)
	}

	return comments, rows.Err()
}

// Share records a share of rootID by userID and creates the repost in one
// transaction. It returns the repost id and the root's new share count.
func (r *PostRepository) Share(ctx context.Context, rootID, userID int64, content string) (int64, int, error) {
	var (
		repostID   int64
		shareCount int
	)

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO shares (post_id, user_id) VALUES ($1, $2)`, rootID, userID); err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return ErrNotFound
			}
			return fmt.Errorf("error recording share: %w", err)
		}

		if err := tx.QueryRow(ctx, `
			INSERT INTO posts (user_id, content, original_post_id)
			VALUES ($1, $2, $3)
			RETURNING id`,
			userID, content, rootID).Scan(&repostID); err != nil {
			return fmt.Errorf("error creating repost: %w", err)
		}

		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM shares WHERE post_id = $1`, rootID).Scan(&shareCount); err != nil {
			return fmt.Errorf("error counting shares: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return repostID, shareCount, nil
}
