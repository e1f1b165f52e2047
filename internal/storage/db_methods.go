package storage

import (
	"context"
	"errors"
	"log"

	"devdialogue/backend/internal/models"

	"gorm.io/gorm"
)

// SaveUser stores or updates a user in PostgreSQL.
func (s *Service) SaveUser(ctx context.Context, user *models.User) error {
	return s.DB.WithContext(ctx).Save(user).Error
}

func (s *Service) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SavePrivateMessage persists a private message. GORM fills the durable ID
// and CreatedAt on the passed struct, which the caller broadcasts.
func (s *Service) SavePrivateMessage(ctx context.Context, msg *models.PrivateMessage) error {
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save private message from %s to %s: %v", msg.SenderID, msg.RecipientID, err)
		return err
	}
	return nil
}

// GetPrivateHistory loads both directions of a conversation, ordered by
// creation time ascending. The persisted order is the source of truth;
// live delivery order is best-effort.
func (s *Service) GetPrivateHistory(ctx context.Context, userID, peerID string) ([]models.PrivateMessage, error) {
	var history []models.PrivateMessage
	err := s.DB.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID, peerID, peerID, userID).
		Order("created_at asc").
		Find(&history).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return history, nil
		}
		return nil, err
	}
	return history, nil
}

func (s *Service) MarkPrivateMessageRead(ctx context.Context, messageID uint) error {
	return s.DB.WithContext(ctx).
		Model(&models.PrivateMessage{}).
		Where("id = ?", messageID).
		Update("is_read", true).Error
}

// CreateGroup stores a group and enrolls its creator as the first member.
func (s *Service) CreateGroup(ctx context.Context, group *models.Group) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		member := models.GroupMember{GroupID: group.ID, UserID: group.CreatedBy, Role: "admin"}
		return tx.Create(&member).Error
	})
}

func (s *Service) GetGroupByID(ctx context.Context, groupID string) (*models.Group, error) {
	var group models.Group
	if err := s.DB.WithContext(ctx).First(&group, "id = ?", groupID).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (s *Service) AddGroupMember(ctx context.Context, groupID, userID string) error {
	member := models.GroupMember{GroupID: groupID, UserID: userID, Role: "member"}
	return s.DB.WithContext(ctx).Create(&member).Error
}

// RemoveGroupMember deletes the membership row outright. A soft delete would
// leave the row occupying the unique (group, user) index and block rejoining.
func (s *Service) RemoveGroupMember(ctx context.Context, groupID, userID string) error {
	return s.DB.WithContext(ctx).
		Unscoped().
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{}).Error
}

func (s *Service) IsGroupMember(ctx context.Context, groupID, userID string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) GetGroupsForUser(ctx context.Context, userID string) ([]models.Group, error) {
	var groups []models.Group
	err := s.DB.WithContext(ctx).
		Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ? AND group_members.deleted_at IS NULL", userID).
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *Service) SaveGroupMessage(ctx context.Context, msg *models.GroupMessage) error {
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save group message for group %s: %v", msg.GroupID, err)
		return err
	}
	return nil
}

func (s *Service) GetGroupHistory(ctx context.Context, groupID string) ([]models.GroupMessage, error) {
	var history []models.GroupMessage
	err := s.DB.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at asc").
		Find(&history).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return history, nil
		}
		return nil, err
	}
	return history, nil
}
