package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Post types
const (
	PostTypeSeek  = "seek"  // 寻宠
	PostTypeFound = "found" // 捡到宠
	PostTypeAdopt = "adopt" // 送养
)

// Post statuses (stored verbatim, UI renders them as-is)
const (
	PostStatusLive      = "展示中"
	PostStatusResolved  = "已结案"
	PostStatusTakenDown = "后台下架"
)

// StringArray is a JSON-encoded string slice column (images, requirements)
type StringArray []string

// Value implements driver.Valuer
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("unsupported type for StringArray")
	}
}

// Post represents a pet listing (posts table)
type Post struct {
	ID            string      `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	UserID        string      `gorm:"column:user_id;index;type:varchar(36)" json:"user_id"`
	PostType      string      `gorm:"column:post_type;index" json:"post_type"` // seek|found|adopt
	PetType       string      `gorm:"column:pet_type;index" json:"pet_type"`   // dog|cat
	Title         string      `gorm:"column:title" json:"title"`
	Description   string      `gorm:"column:description;type:text" json:"description"`
	Images        StringArray `gorm:"column:images;type:json" json:"images"`
	Location      string      `gorm:"column:location" json:"location"`
	Status        string      `gorm:"column:status;index" json:"status"`
	Nickname      string      `gorm:"column:nickname" json:"nickname"`
	Breed         string      `gorm:"column:breed" json:"breed"`
	Age           string      `gorm:"column:age" json:"age"`
	Phone         string      `gorm:"column:phone" json:"phone"`
	IsPrivate     bool        `gorm:"column:is_private" json:"is_private"`
	RewardAmount  string      `gorm:"column:reward_amount" json:"reward_amount"`
	Vaccine       string      `gorm:"column:vaccine" json:"vaccine"`
	Sterilization string      `gorm:"column:sterilization" json:"sterilization"`
	Requirements  StringArray `gorm:"column:requirements;type:json" json:"requirements"`
	CreatedAt     time.Time   `gorm:"column:created_at;index" json:"created_at"`
}

func (Post) TableName() string {
	return "posts"
}

// PostResponse represents a post in API responses
type PostResponse struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	PostType      string           `json:"post_type"`
	PetType       string           `json:"pet_type"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Images        []string         `json:"images"`
	Location      string           `json:"location"`
	Status        string           `json:"status"`
	Nickname      string           `json:"nickname"`
	Breed         string           `json:"breed"`
	Age           string           `json:"age"`
	Phone         string           `json:"phone,omitempty"`
	IsPrivate     bool             `json:"is_private"`
	RewardAmount  string           `json:"reward_amount,omitempty"`
	Vaccine       string           `json:"vaccine"`
	Sterilization string           `json:"sterilization"`
	Requirements  []string         `json:"requirements"`
	CreatedAt     string           `json:"created_at"`
	Author        *ProfileResponse `json:"author,omitempty"`
}

// ToResponse converts Post to PostResponse.
// Phone is withheld when the poster marked it private.
func (p *Post) ToResponse() *PostResponse {
	resp := &PostResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		PostType:      p.PostType,
		PetType:       p.PetType,
		Title:         p.Title,
		Description:   p.Description,
		Images:        p.Images,
		Location:      p.Location,
		Status:        p.Status,
		Nickname:      p.Nickname,
		Breed:         p.Breed,
		Age:           p.Age,
		IsPrivate:     p.IsPrivate,
		Vaccine:       p.Vaccine,
		Sterilization: p.Sterilization,
		Requirements:  p.Requirements,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
	if !p.IsPrivate {
		resp.Phone = p.Phone
		resp.RewardAmount = p.RewardAmount
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	if resp.Requirements == nil {
		resp.Requirements = []string{}
	}
	return resp
}

// ListPostsQuery filters for the public post listing
type ListPostsQuery struct {
	PostType string `form:"post_type"`
	PetType  string `form:"pet_type"`
	Keyword  string `form:"keyword"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}
