package permission

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/openfun/ashley-sub000/internal/domain/permission"
	"github.com/openfun/ashley-sub000/internal/shared/constants"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

var _ permission.LockStore = (*LockStore)(nil)

// LockStore performs lock transitions directly on the casbin_rule table
// so the flag flip and the grant rewrite commit together. The enforcer
// must be reloaded afterwards to see the new rules.
type LockStore struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewLockStore(db *gorm.DB, log logger.Interface) *LockStore {
	return &LockStore{db: db, logger: log}
}

// LockContext sets the flag and removes every base-write grant of the
// base group across the context's forums in one transaction.
func (s *LockStore) LockContext(ctx context.Context, contextID uint, baseGroupName string, forumIDs []uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.setFlag(tx, contextID, true); err != nil {
			return err
		}

		if len(forumIDs) == 0 {
			return nil
		}

		objects := make([]string, 0, len(forumIDs))
		for _, forumID := range forumIDs {
			objects = append(objects, forumObject(forumID))
		}
		writes := make([]string, 0)
		for _, codename := range permission.BaseWritePermissions() {
			writes = append(writes, string(codename))
		}

		result := tx.Exec(
			"DELETE FROM casbin_rule WHERE ptype = 'p' AND v0 = ? AND v1 IN ? AND v2 IN ?",
			baseGroupName, objects, writes,
		)
		if result.Error != nil {
			return fmt.Errorf("failed to strip write grants: %w", result.Error)
		}

		s.logger.Infow("context locked",
			"context_id", contextID, "forums", len(forumIDs), "revoked", result.RowsAffected)
		return nil
	})
	if err != nil {
		return fmt.Errorf("lock transition failed: %w", err)
	}
	return nil
}

// UnlockContext clears the flag and reinstates the full base set on the
// base group for each forum, in one transaction. Grants present already
// are left alone.
func (s *LockStore) UnlockContext(ctx context.Context, contextID uint, baseGroupName string, forumIDs []uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.setFlag(tx, contextID, false); err != nil {
			return err
		}

		restored := int64(0)
		for _, forumID := range forumIDs {
			object := forumObject(forumID)
			for _, codename := range permission.BasePermissions() {
				result := tx.Exec(
					`INSERT INTO casbin_rule (ptype, v0, v1, v2)
					 SELECT 'p', ?, ?, ?
					 WHERE NOT EXISTS (
					     SELECT 1 FROM casbin_rule
					     WHERE ptype = 'p' AND v0 = ? AND v1 = ? AND v2 = ?
					 )`,
					baseGroupName, object, string(codename),
					baseGroupName, object, string(codename),
				)
				if result.Error != nil {
					return fmt.Errorf("failed to restore %s: %w", codename, result.Error)
				}
				restored += result.RowsAffected
			}
		}

		s.logger.Infow("context unlocked",
			"context_id", contextID, "forums", len(forumIDs), "restored", restored)
		return nil
	})
	if err != nil {
		return fmt.Errorf("unlock transition failed: %w", err)
	}
	return nil
}

func (s *LockStore) setFlag(tx *gorm.DB, contextID uint, locked bool) error {
	result := tx.Table(constants.TableLTIContexts).
		Where("id = ?", contextID).
		Update("is_marked_locked", locked)
	if result.Error != nil {
		return fmt.Errorf("failed to set lock flag: %w", result.Error)
	}
	return nil
}
