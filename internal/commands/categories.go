package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"kopilka/internal/config"
	"kopilka/internal/models"
	"kopilka/internal/services"
)

func newCategoriesCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Category maintenance",
	}

	var householdID uint
	normalize := &cobra.Command{
		Use:   "normalize",
		Short: "Merge categories whose names differ only by case or spacing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withDB(func(_ *config.Config, db *gorm.DB) error {
				return runNormalize(cmd, db, householdID)
			})
		},
	}
	normalize.Flags().UintVar(&householdID, "household", 0, "only this household (default: all)")
	cmd.AddCommand(normalize)

	return cmd
}

func runNormalize(cmd *cobra.Command, db *gorm.DB, householdID uint) error {
	ids := []uint{householdID}
	if householdID == 0 {
		ids = nil
		if err := db.Model(&models.Household{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("listing households: %w", err)
		}
	}

	categories := services.NewCategoryService(db)
	audit := services.NewAuditService(db)
	out := cmd.OutOrStdout()

	total := 0
	for _, id := range ids {
		groups, err := categories.NormalizeDuplicates(id)
		if err != nil {
			return fmt.Errorf("household %d: %w", id, err)
		}
		if groups == 0 {
			continue
		}
		audit.Log(id, nil, "NORMALIZE_CATEGORIES", "category", 0, "", map[string]interface{}{"groups": groups})
		fmt.Fprintf(out, "household %d: merged %d group(s)\n", id, groups)
		total += groups
	}
	fmt.Fprintf(out, "%d household(s) checked, %d group(s) merged\n", len(ids), total)
	return nil
}
