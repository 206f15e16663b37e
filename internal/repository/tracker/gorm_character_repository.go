// File: internal/repository/tracker/gorm_character_repository.go
package tracker

import (
	"context"
	"errors"
	"log"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
	"gorm.io/gorm"
)

var ErrCharacterNotFound = errors.New("character not found")

type gormCharacterRepository struct {
	db *gorm.DB
}

func NewGormCharacterRepository(db *gorm.DB) CharacterRepository {
	return &gormCharacterRepository{db: db}
}

func (r *gormCharacterRepository) Create(ctx context.Context, character *domain.Character) (*domain.Character, error) {
	if err := r.db.WithContext(ctx).Create(character).Error; err != nil {
		log.Printf("[CharacterRepository] Create error for name %q: %v", character.Name, err)
		return nil, errors.New("database error creating character")
	}
	return character, nil
}

func (r *gormCharacterRepository) Update(ctx context.Context, character *domain.Character) error {
	if err := r.db.WithContext(ctx).Save(character).Error; err != nil {
		log.Printf("[CharacterRepository] Update error for character ID %d: %v", character.ID, err)
		return errors.New("database error updating character")
	}
	return nil
}

func (r *gormCharacterRepository) FindByID(ctx context.Context, id uint) (*domain.Character, error) {
	var character domain.Character
	if err := r.db.WithContext(ctx).First(&character, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCharacterNotFound
		}
		log.Printf("[CharacterRepository] FindByID error for character ID %d: %v", id, err)
		return nil, errors.New("database error finding character")
	}
	return &character, nil
}

// FindByBookID lists characters in order of first appearance.
func (r *gormCharacterRepository) FindByBookID(ctx context.Context, bookID uint) ([]domain.Character, error) {
	var characters []domain.Character
	if err := r.db.WithContext(ctx).Where("book_id = ?", bookID).Order("first_page asc, id asc").Find(&characters).Error; err != nil {
		log.Printf("[CharacterRepository] FindByBookID error for book ID %d: %v", bookID, err)
		return nil, errors.New("database error listing characters")
	}
	return characters, nil
}

func (r *gormCharacterRepository) Delete(ctx context.Context, id uint, bookID uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND book_id = ?", id, bookID).Delete(&domain.Character{})
	if result.Error != nil {
		log.Printf("[CharacterRepository] Delete error for character ID %d: %v", id, result.Error)
		return errors.New("database error deleting character")
	}
	if result.RowsAffected == 0 {
		return ErrCharacterNotFound
	}
	return nil
}
