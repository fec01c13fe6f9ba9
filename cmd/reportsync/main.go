package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"reportsync/internal/app"
	"reportsync/internal/config"
	"reportsync/internal/encryption"
	"reportsync/internal/report"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Save", "SyncAll").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "reportsync",
	Short: "Offline report queue and sync tool",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		hostID := uuid.New().String()
		cfg := config.NewConfig(hostID, defaults["base_dir"])
		if encrypt {
			cfg.Encryption.Type = "age"
		}

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		if encrypt {
			enc := encryption.NewAgeEncryptor(cfg.Encryption)
			if err := enc.Setup(); err != nil {
				return fmt.Errorf("generating queue encryption keys: %w", err)
			}
			fmt.Printf("Queue encryption keys written under %s\n", cfg.BaseDir)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Host ID:    %s\n", cfg.HostID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Store:      %s\n", cfg.Store.Type)
		fmt.Printf("Vault:      %s (%s)\n", cfg.Vault.Type, cfg.Vault.Root)
		fmt.Printf("Documents:  %s -> %s/%s\n", cfg.Documents.Type, cfg.Documents.Endpoint, cfg.Documents.Collection)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		return nil
	},
}

// save command
var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Queue a report for later sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		photo, _ := cmd.Flags().GetString("photo")
		rawFields, _ := cmd.Flags().GetStringArray("field")

		fields := make(map[string]any, len(rawFields))
		for _, raw := range rawFields {
			key, value, ok := strings.Cut(raw, "=")
			if !ok || key == "" {
				return fmt.Errorf("invalid field %q, expected key=value", raw)
			}
			fields[key] = value
		}

		a, err := newApp("Save")
		if err != nil {
			return err
		}
		defer a.Close()

		outcome, err := a.Manager().SaveOfflineReport(fields, photo)
		if err != nil {
			return err
		}

		fmt.Printf("Report queued: %s\n", outcome.OfflineID)
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("List")
		if err != nil {
			return err
		}
		defer a.Close()

		reports, err := a.Manager().GetPendingReports()
		if err != nil {
			return err
		}

		if len(reports) == 0 {
			fmt.Println("No pending reports.")
			return nil
		}

		for _, r := range reports {
			line := fmt.Sprintf("%s  saved %s  attempts %d",
				r.OfflineID, r.SavedAt.Format("2006-01-02 15:04:05"), r.SyncAttempts)
			if r.Photo != "" {
				line += "  photo"
			}
			if r.LastSyncError != "" {
				line += "  last error: " + r.LastSyncError
			}
			fmt.Println(line)
		}
		return nil
	},
}

// count command
var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the number of pending reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Count")
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.Manager().GetPendingCount()
		if err != nil {
			return err
		}
		fmt.Println(count)
		return nil
	},
}

// sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync pending reports to the remote store",
	RunE: func(cmd *cobra.Command, args []string) error {
		skipPhotos, _ := cmd.Flags().GetBool("skip-photos")
		id, _ := cmd.Flags().GetString("id")

		a, err := newApp("Sync")
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()

		if id != "" {
			outcome, err := a.Manager().SyncSingleReport(ctx, id, skipPhotos)
			if err != nil {
				return err
			}
			if outcome.PhotoUploaded {
				fmt.Printf("Synced %s (photo uploaded)\n", id)
			} else {
				fmt.Printf("Synced %s\n", id)
			}
			return nil
		}

		progress := func(current, total int, r *report.OfflineReport) {
			fmt.Printf("[%d/%d] %s\n", current, total, r.OfflineID)
		}

		outcome, err := a.Manager().SyncOfflineReports(ctx, progress, skipPhotos)
		if err != nil {
			return err
		}

		fmt.Printf("Synced %d, failed %d, photos skipped %d\n",
			outcome.Synced, outcome.Failed, outcome.PhotosSkipped)
		for _, r := range outcome.FailedReports {
			fmt.Printf("  still pending: %s (%s)\n", r.OfflineID, r.LastSyncError)
		}
		return nil
	},
}

// delete command
var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a pending report and its photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Delete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Manager().DeleteReport(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

// clear command
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all pending reports and photos",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Clear")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Manager().ClearAllOfflineReports(); err != nil {
			return err
		}
		fmt.Println("Cleared all offline reports.")
		return nil
	},
}

// status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the result of the last sync run",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Status")
		if err != nil {
			return err
		}
		defer a.Close()

		status, err := a.Manager().GetLastSyncStatus()
		if err != nil {
			return err
		}
		if status == nil {
			fmt.Println("No sync recorded yet.")
			return nil
		}

		fmt.Printf("Last sync: %s\n", status.LastSync.Format("2006-01-02 15:04:05"))
		fmt.Printf("Synced %d, failed %d, photos skipped %d\n",
			status.Synced, status.Failed, status.PhotosSkipped)
		for _, id := range status.SyncedReportIDs {
			fmt.Printf("  synced: %s\n", id)
		}
		return nil
	},
}

// storage command
var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Show local storage usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Storage")
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.Manager().GetStorageInfo()
		if err != nil {
			return err
		}
		fmt.Printf("Pending reports: %d\n", info.ReportCount)
		fmt.Printf("Photo storage:   %s MB (%d bytes)\n", info.TotalPhotoSizeMB, info.TotalPhotoSize)
		return nil
	},
}

// diag command
var diagCmd = &cobra.Command{
	Use:   "diag [PHOTO]",
	Short: "Diagnose connectivity and upload problems",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Diag")
		if err != nil {
			return err
		}
		defer a.Close()

		photo := ""
		if len(args) == 1 {
			photo = args[0]
		}

		results := a.Diagnostic().Run(context.Background(), photo)
		failed := 0
		for _, res := range results {
			mark := "PASS"
			if !res.Pass {
				mark = "FAIL"
				failed++
			}
			fmt.Printf("%-4s  %-25s %s\n", mark, res.Name, res.Detail)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d checks failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().Bool("encrypt", false, "Encrypt the queue at rest (generates age keys)")
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(saveCmd)
	saveCmd.Flags().String("photo", "", "Path or URI of the report photo")
	saveCmd.Flags().StringArray("field", nil, "Report field as key=value, repeatable")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().Bool("skip-photos", false, "Sync report text without uploading photos")
	syncCmd.Flags().String("id", "", "Sync a single report by offline ID")
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(storageCmd)
	rootCmd.AddCommand(diagCmd)
}
