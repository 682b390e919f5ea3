package pipeline

import (
	"context"
	"fmt"
	"strings"

	"grayco-suite/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// childTables holds every table that references projects.project_id. Drive files are not touched.
var childTables = []string{
	"contacts",
	"estimates",
	"locations",
	"processed_emails",
	"project_estimates",
	"project_files",
	"project_photos",
	"project_touches",
	"project_history",
	"project_proposals",
	"production_logistics",
	"commissions",
}

func missingTable(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "doesn't exist") ||
		strings.Contains(msg, "no such table")
}

// Delete permanently removes a project and all of its child rows in one transaction.
// Any child-table failure rolls everything back and names the failing tables.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var failures []string
		for i, table := range childTables {
			// Each delete runs under its own savepoint so a missing table does not poison the transaction.
			sp := fmt.Sprintf("child_%d", i)
			if err := tx.SavePoint(sp).Error; err != nil {
				return err
			}
			res := tx.Exec("DELETE FROM "+table+" WHERE project_id = ?", id)
			if res.Error != nil {
				if err := tx.RollbackTo(sp).Error; err != nil {
					return err
				}
				if missingTable(res.Error) {
					log.Warn().Str("table", table).Msg("delete: child table missing, skipped")
					continue
				}
				failures = append(failures, fmt.Sprintf("%s: %v", table, res.Error))
				continue
			}
			if res.RowsAffected > 0 {
				log.Info().Str("table", table).Int64("rows", res.RowsAffected).Str("project_id", id.String()).Msg("delete: cleared child rows")
			}
		}
		if len(failures) > 0 {
			return fmt.Errorf("Failed to clear child records: %s", strings.Join(failures, "; "))
		}

		res := tx.Where("id = ? AND tenant_id = ?", id, s.TenantID).Delete(&domain.Project{})
		if res.Error != nil {
			return fmt.Errorf("Database error during delete: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrProjectNotFound
		}
		return nil
	})
}
