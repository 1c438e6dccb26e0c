package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"kopilka/internal/config"
	"kopilka/internal/services"
)

func newRemindersCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Reminder inspection",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "due",
		Short: "List active reminders that are due across all households",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withDB(func(_ *config.Config, db *gorm.DB) error {
				reminders := services.NewReminderService(db, services.NewCategoryService(db))
				due, err := reminders.AllDue(time.Now().UTC())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tHOUSEHOLD\tTITLE\tAMOUNT\tDUE")
				for _, r := range due {
					amount := "-"
					if r.Amount.Valid {
						amount = r.Amount.Decimal.StringFixed(2) + " " + r.Currency
					}
					fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", r.ID, r.HouseholdID, r.Title, amount, r.NextRunAt.UTC().Format(time.RFC3339))
				}
				return w.Flush()
			})
		},
	})

	return cmd
}
