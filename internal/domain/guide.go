package domain

import "time"

// Guide statuses
const (
	GuideStatusDraft     = "草稿"
	GuideStatusPublished = "已发布"
)

// Guide represents an editorial care guide (guides table)
type Guide struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"column:title" json:"title"`
	Category  string    `gorm:"column:category;index" json:"category"` // e.g. "dog", "cat"
	Content   string    `gorm:"column:content;type:text" json:"content"`
	CoverURL  string    `gorm:"column:cover_url" json:"cover_url"`
	Status    string    `gorm:"column:status;index" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Guide) TableName() string {
	return "guides"
}

// GuideListItem omits the body for list views
type GuideListItem struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	CoverURL  string `json:"cover_url"`
	CreatedAt string `json:"created_at"`
}

// ToListItem converts Guide to GuideListItem
func (g *Guide) ToListItem() *GuideListItem {
	return &GuideListItem{
		ID:        g.ID,
		Title:     g.Title,
		Category:  g.Category,
		CoverURL:  g.CoverURL,
		CreatedAt: g.CreatedAt.Format(time.RFC3339),
	}
}

// SaveGuideRequest creates or updates a guide (admin only)
type SaveGuideRequest struct {
	Title    string `json:"title" binding:"required"`
	Category string `json:"category" binding:"required"`
	Content  string `json:"content" binding:"required"`
	CoverURL string `json:"cover_url"`
	Status   string `json:"status"`
}
