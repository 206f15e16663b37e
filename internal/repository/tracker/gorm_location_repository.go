// File: internal/repository/tracker/gorm_location_repository.go
package tracker

import (
	"context"
	"errors"
	"log"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
	"gorm.io/gorm"
)

var ErrLocationNotFound = errors.New("location not found")

type gormLocationRepository struct {
	db *gorm.DB
}

func NewGormLocationRepository(db *gorm.DB) LocationRepository {
	return &gormLocationRepository{db: db}
}

func (r *gormLocationRepository) Create(ctx context.Context, location *domain.Location) (*domain.Location, error) {
	if err := r.db.WithContext(ctx).Create(location).Error; err != nil {
		log.Printf("[LocationRepository] Create error for name %q: %v", location.Name, err)
		return nil, errors.New("database error creating location")
	}
	return location, nil
}

func (r *gormLocationRepository) Update(ctx context.Context, location *domain.Location) error {
	if err := r.db.WithContext(ctx).Save(location).Error; err != nil {
		log.Printf("[LocationRepository] Update error for location ID %d: %v", location.ID, err)
		return errors.New("database error updating location")
	}
	return nil
}

func (r *gormLocationRepository) FindByID(ctx context.Context, id uint) (*domain.Location, error) {
	var location domain.Location
	if err := r.db.WithContext(ctx).First(&location, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		log.Printf("[LocationRepository] FindByID error for location ID %d: %v", id, err)
		return nil, errors.New("database error finding location")
	}
	return &location, nil
}

func (r *gormLocationRepository) FindByBookID(ctx context.Context, bookID uint) ([]domain.Location, error) {
	var locations []domain.Location
	if err := r.db.WithContext(ctx).Where("book_id = ?", bookID).Order("name asc").Find(&locations).Error; err != nil {
		log.Printf("[LocationRepository] FindByBookID error for book ID %d: %v", bookID, err)
		return nil, errors.New("database error listing locations")
	}
	return locations, nil
}

func (r *gormLocationRepository) Delete(ctx context.Context, id uint, bookID uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND book_id = ?", id, bookID).Delete(&domain.Location{})
	if result.Error != nil {
		log.Printf("[LocationRepository] Delete error for location ID %d: %v", id, result.Error)
		return errors.New("database error deleting location")
	}
	if result.RowsAffected == 0 {
		return ErrLocationNotFound
	}
	return nil
}
