package cmd

import (
	"fmt"
	"time"

	"github.com/frahmantamala/practice-management/internal/activity"
	activityPostgres "github.com/frahmantamala/practice-management/internal/activity/postgres"
	"github.com/frahmantamala/practice-management/internal/core/events"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish events through the in-process bus, e.g. to note maintenance work in the activity trail.`,
}

var publishEventCmd = &cobra.Command{
	Use:          "publish [action]",
	Short:        "Publish an activity.recorded event",
	Long:         `Publish an activity.recorded event. The activity subscriber persists it to the activity trail.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         publishActivityEvent,
}

var (
	eventModule      string
	eventDescription string
	eventUserID      int64
)

func publishActivityEvent(cmd *cobra.Command, args []string) error {
	cfg, lg, err := bootstrap()
	if err != nil {
		return err
	}
	db, err := initDB(cfg.Database, false)
	if err != nil {
		return err
	}

	bus := events.NewEventBus(lg)
	activity.NewService(activityPostgres.NewActivityRepository(db), lg).Subscribe(bus)

	payload := events.ActivityPayload{
		Action:      args[0],
		Module:      eventModule,
		Description: eventDescription,
		Metadata:    map[string]any{"source": "cli"},
	}
	if eventUserID > 0 {
		payload.UserID = &eventUserID
	}
	ev := events.NewActivityRecordedEvent(payload, time.Now())

	lg.Info("publishing event", "event_type", ev.EventType(), "event_id", ev.EventID())
	if err := bus.PublishSync(cmd.Context(), ev); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "recorded", ev.EventID())
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventModule, "module", "", "module the activity concerns")
	publishEventCmd.Flags().StringVar(&eventDescription, "description", "", "free-text description")
	publishEventCmd.Flags().Int64Var(&eventUserID, "user-id", 0, "acting user id")

	eventCmd.AddCommand(publishEventCmd)
}
