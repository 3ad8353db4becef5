package domain

import "time"

// Favorite represents a bookmarked post (favorites table)
type Favorite struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"column:user_id;index:idx_fav_user_post,unique;type:varchar(36)" json:"user_id"`
	PostID    string    `gorm:"column:post_id;index:idx_fav_user_post,unique;type:varchar(36)" json:"post_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// FavoriteResponse is a favorite joined with its post.
// Resolved or taken-down posts stay in the list so the UI can gray them out.
type FavoriteResponse struct {
	PostID     string        `json:"post_id"`
	CreatedAt  string        `json:"created_at"`
	Post       *PostResponse `json:"post,omitempty"`
	IsResolved bool          `json:"is_resolved"`
}
