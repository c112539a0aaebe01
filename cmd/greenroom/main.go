package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/greenroomhq/greenroom/internal/profile"
	"github.com/greenroomhq/greenroom/server/exporter"
	"github.com/greenroomhq/greenroom/server/scheduler/window"
	"github.com/greenroomhq/greenroom/server/service/schedule"
	"github.com/greenroomhq/greenroom/store"
	"github.com/greenroomhq/greenroom/store/db"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "greenroom",
	Short: "Scheduling core for the greenroom artist-team assistant",
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a workspace's calendar as an iCalendar (.ics) file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := context.Background()

		prof, err := loadProfile()
		if err != nil {
			return err
		}

		driver, err := db.NewDriver(prof)
		if err != nil {
			return fmt.Errorf("failed to create db driver: %w", err)
		}
		st := store.New(driver, prof)
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		workspaceID, _ := cmd.Flags().GetString("workspace")
		output, _ := cmd.Flags().GetString("output")
		days, _ := cmd.Flags().GetInt("days")
		if workspaceID == "" {
			return fmt.Errorf("--workspace is required")
		}

		now := time.Now()
		horizon, err := window.New(now, now.AddDate(0, 0, days))
		if err != nil {
			return err
		}

		svc := schedule.NewService(st)
		events, err := svc.QueryEvents(ctx, &schedule.QueryEventsRequest{
			WorkspaceID: workspaceID,
			Horizon:     horizon,
		})
		if err != nil {
			return fmt.Errorf("failed to query events: %w", err)
		}

		doc, err := exporter.Export(events)
		if err != nil {
			return fmt.Errorf("failed to export calendar: %w", err)
		}
		if err := os.WriteFile(output, doc, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}

		slog.Info("calendar exported",
			"workspace", workspaceID,
			"events", len(events),
			"output", output,
		)
		return nil
	},
}

func loadProfile() (*profile.Profile, error) {
	prof := &profile.Profile{
		Mode:     viper.GetString("mode"),
		Data:     viper.GetString("data"),
		Driver:   viper.GetString("driver"),
		DSN:      viper.GetString("dsn"),
		Timezone: viper.GetString("timezone"),
		Version:  version,
	}
	prof.FromEnv()
	if err := prof.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	return prof, nil
}

func init() {
	viper.SetEnvPrefix("greenroom")
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().String("mode", "demo", `mode of the instance, can be "prod", "dev" or "demo"`)
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name")
	rootCmd.PersistentFlags().String("timezone", "UTC", "default IANA timezone")
	for _, flag := range []string{"mode", "data", "driver", "dsn", "timezone"} {
		_ = viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag))
	}

	exportCmd.Flags().String("workspace", "", "workspace id to export")
	exportCmd.Flags().String("output", "calendar.ics", "output file path")
	exportCmd.Flags().Int("days", 90, "horizon length in days, starting now")
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
