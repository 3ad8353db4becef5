package repository

import (
	"time"

	"github.com/00yuyi00/ChongYu/internal/domain"
	"gorm.io/gorm"
)

// ProfileRepository profile data access interface
type ProfileRepository interface {
	Create(profile *domain.Profile) error
	FindByID(id string) (*domain.Profile, error)
	FindByIDs(ids []string) ([]*domain.Profile, error)
	FindByEmail(email string) (*domain.Profile, error)
	Update(id string, fields map[string]interface{}) error
	List(page, limit int) ([]*domain.Profile, int64, error)
	Count() (int64, error)
	CountSince(days int) (int64, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Create inserts a profile row
func (r *profileRepository) Create(profile *domain.Profile) error {
	return r.db.Create(profile).Error
}

// FindByID finds a profile by user id
func (r *profileRepository) FindByID(id string) (*domain.Profile, error) {
	var profile domain.Profile
	if err := r.db.Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByIDs batch-fetches profiles for a set of user ids in one query
func (r *profileRepository) FindByIDs(ids []string) ([]*domain.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var profiles []*domain.Profile
	if err := r.db.Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// FindByEmail finds a profile by email
func (r *profileRepository) FindByEmail(email string) (*domain.Profile, error) {
	var profile domain.Profile
	if err := r.db.Where("email = ?", email).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update applies the given fields to a profile row
func (r *profileRepository) Update(id string, fields map[string]interface{}) error {
	return r.db.Model(&domain.Profile{}).Where("id = ?", id).Updates(fields).Error
}

// List returns profiles with pagination, newest first
func (r *profileRepository) List(page, limit int) ([]*domain.Profile, int64, error) {
	var profiles []*domain.Profile
	var total int64

	r.db.Model(&domain.Profile{}).Count(&total)

	offset := (page - 1) * limit
	err := r.db.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&profiles).Error
	return profiles, total, err
}

// Count returns the total number of profiles
func (r *profileRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.Profile{}).Count(&count).Error
	return count, err
}

// CountSince counts profiles created within the last n days
func (r *profileRepository) CountSince(days int) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Profile{}).
		Where("created_at >= ?", time.Now().AddDate(0, 0, -days)).
		Count(&count).Error
	return count, err
}
