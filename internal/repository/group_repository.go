package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"giftbot/internal/models"
)

// DrawPlanner строит рёбра по группе и подтвержденным участникам внутри транзакции
type DrawPlanner func(group *models.Group, confirmed []models.Participant) ([]models.Assignment, error)

type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id string) (*models.Group, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListByAdmin(ctx context.Context, adminID int64) ([]*models.Group, error)
	DeleteCascade(ctx context.Context, id string) error
	CompleteDraw(ctx context.Context, id string, plan DrawPlanner) (*models.Group, []models.Assignment, error)
	CountByStatus(ctx context.Context, status models.GroupStatus) (int64, error)
}

type groupRepository struct{ db *gorm.DB }

func NewGroupRepository(db *gorm.DB) GroupRepository { return &groupRepository{db: db} }

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	if group.Status == "" {
		group.Status = models.GroupStatusOpen
	}
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	return findGroup(r.db.WithContext(ctx), id, false)
}

func (r *groupRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Group{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *groupRepository) ListByAdmin(ctx context.Context, adminID int64) ([]*models.Group, error) {
	var gs []*models.Group
	err := r.db.WithContext(ctx).Where("admin_id = ?", adminID).Order("created_at DESC").Find(&gs).Error
	return gs, err
}

// DeleteCascade удаляет группу вместе с участниками, парами и журналом уведомлений
func (r *groupRepository) DeleteCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findGroup(tx, id, true); err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.Participant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, "id = ?", id).Error
	})
}

// CompleteDraw под блокировкой строки группы читает подтвержденных участников,
// строит пары через plan и одной транзакцией переводит группу в drawn и сохраняет все пары.
func (r *groupRepository) CompleteDraw(ctx context.Context, id string, plan DrawPlanner) (*models.Group, []models.Assignment, error) {
	var (
		group       *models.Group
		assignments []models.Assignment
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := findGroup(tx, id, true)
		if err != nil {
			return err
		}
		if g.Status == models.GroupStatusDrawn {
			return ErrGroupAlreadyDrawn
		}

		var confirmed []models.Participant
		if err := tx.Where("group_id = ? AND status = ?", id, models.ParticipantStatusConfirmed).
			Order("registered_at ASC").
			Find(&confirmed).Error; err != nil {
			return err
		}

		planned, err := plan(g, confirmed)
		if err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&models.Group{}).
			Where("id = ? AND status = ?", id, models.GroupStatusOpen).
			Updates(map[string]interface{}{
				"status":     models.GroupStatusDrawn,
				"drawn_at":   now,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrGroupAlreadyDrawn
		}

		if len(planned) > 0 {
			if err := tx.Omit(clause.Associations).Create(&planned).Error; err != nil {
				return err
			}
		}

		g.Status = models.GroupStatusDrawn
		g.DrawnAt = &now
		group = g
		assignments = planned
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return group, assignments, nil
}

func (r *groupRepository) CountByStatus(ctx context.Context, status models.GroupStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Group{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// findGroup читает группу; lock добавляет SELECT ... FOR UPDATE там, где диалект это умеет
func findGroup(db *gorm.DB, id string, lock bool) (*models.Group, error) {
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var g models.Group
	if err := db.First(&g, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}
