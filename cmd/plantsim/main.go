package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/acd-industrial/plantsim/internal/config"
	"github.com/acd-industrial/plantsim/internal/copilot"
	"github.com/acd-industrial/plantsim/internal/energy"
	"github.com/acd-industrial/plantsim/internal/models"
	"github.com/acd-industrial/plantsim/internal/notification"
	"github.com/acd-industrial/plantsim/internal/predictive"
	"github.com/acd-industrial/plantsim/pkg/utils"
)

// AppVersion contains the application version
const AppVersion = "1.0.0"

// loadConfig loads and validates the configuration named by --config
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if level := viper.GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if viper.GetBool("debug") {
		cfg.App.Debug = true
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, utils.NewAppError(utils.ErrCodeConfiguration, "invalid configuration", err.Error())
	}
	return cfg, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// CLI Commands

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "plantsim",
	Short:   "Industrial AI plant simulator",
	Long:    `Simulated plant floor with predictive maintenance, energy planning, line efficiency, scheduling, anomaly detection, an operator copilot and quality vision, served over HTTP.`,
	Version: AppVersion,
	RunE:    runServer,
}

// runServer runs the simulation and HTTP API until a signal arrives
func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	if err := app.Start(); err != nil {
		_ = app.Stop()
		return fmt.Errorf("failed to start application: %w", err)
	}

	<-signalChan
	fmt.Println("\nReceived shutdown signal, stopping application...")

	return app.Stop()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("plantsim %s\n", AppVersion)
	},
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

// validateConfigCmd validates the configuration
var validateConfigCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}

		fmt.Printf("Configuration is valid!\n")
		fmt.Printf("Environment: %s\n", cfg.App.Environment)
		fmt.Printf("Server: %s\n", cfg.Server.Address())
		fmt.Printf("Anomaly interval: %s\n", cfg.Simulation.AnomalyInterval)
		fmt.Printf("Webhook notifications: %t\n", cfg.Notifications.EnableWebhookNotifications)

		return nil
	},
}

// testCmd sends a test alert through the configured channels
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test configuration and notification delivery",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := utils.InitLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.File); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		fmt.Println("✓ Configuration valid")

		n := cfg.Notifications
		nm := notification.NewNotificationManager(&notification.NotificationManagerConfig{
			NotificationTimeout:        n.NotificationTimeout,
			RetryAttempts:              n.RetryAttempts,
			RetryDelay:                 n.RetryDelay,
			EnableLogNotifications:     n.EnableLogNotifications,
			EnableWebhookNotifications: n.EnableWebhookNotifications,
			WebhookURL:                 n.WebhookURL,
			WebhookHeaders:             n.WebhookHeaders,
			LogLevel:                   cfg.Logging.Level,
		}, nil)

		alert := models.NewAlert("test", models.SeverityInfo, 0, "Test bildirimi", "plantsim connectivity test")
		records, err := nm.Send(cmd.Context(), alert)
		for _, r := range records {
			fmt.Printf("  %s → %s (%s, %d attempt(s))\n", r.Type, r.Target, r.Status, r.Attempts)
		}
		if err != nil {
			return fmt.Errorf("notification test failed: %w", err)
		}

		fmt.Println("\nAll tests passed! ✓")
		return nil
	},
}

// predictCmd runs one predictive maintenance evaluation
var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Evaluate one vibration/temperature/rpm reading",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		vib, _ := flags.GetFloat64("vibration")
		temp, _ := flags.GetFloat64("temperature")
		rpm, _ := flags.GetFloat64("rpm")

		res, err := predictive.Simulate(predictive.Reading{Vibration: vib, Temperature: temp, RPM: rpm})
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

// energyCmd groups the energy planning commands
var energyCmd = &cobra.Command{
	Use:   "energy",
	Short: "Furnace energy planning commands",
}

// energyOptimizeCmd moves a heating run to its cheapest start hour
var energyOptimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Find the cheapest start hour for a heating run",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		plan := energy.DefaultPlan()
		plan.StartHour, _ = flags.GetInt("start")
		plan.TargetTemperature, _ = flags.GetFloat64("temperature")
		plan.Deadline, _ = flags.GetInt("deadline")

		opt, err := energy.Optimize(plan)
		if err != nil {
			return err
		}

		fmt.Printf("Start %02d:00 → %02d:00\n", opt.Before.Plan.StartHour, opt.After.Plan.StartHour)
		fmt.Printf("Cost %s TL → %s TL (%%%d saved)\n",
			utils.FormatTurkishNumber(opt.Before.Cost), utils.FormatTurkishNumber(opt.After.Cost), opt.SavingsPercent)
		fmt.Printf("Carbon %.1f kg CO2\n", opt.After.CarbonKg)
		return nil
	},
}

// copilotCmd groups the copilot commands
var copilotCmd = &cobra.Command{
	Use:   "copilot",
	Short: "Operator copilot commands",
}

// copilotAskCmd answers one question from the knowledge base
var copilotAskCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the copilot a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		delay, _ := cmd.Flags().GetDuration("delay")
		cp := copilot.New(nil, copilot.Options{QueryDelay: delay})

		ctx, cancel := context.WithTimeout(cmd.Context(), delay+5*time.Second)
		defer cancel()

		resp, err := cp.Query(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		fmt.Println(resp.Answer)
		fmt.Printf("\nKaynak: %s (%s, güven %%%d)\n", resp.Source, resp.SourceType, resp.Confidence)
		return nil
	},
}

// init initializes the CLI commands
func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug mode")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	predictCmd.Flags().Float64("vibration", 0.5, "vibration in mm/s (0-5)")
	predictCmd.Flags().Float64("temperature", 62, "temperature in °C (20-150)")
	predictCmd.Flags().Float64("rpm", 3000, "spindle speed (0-6000)")

	def := energy.DefaultPlan()
	energyOptimizeCmd.Flags().Int("start", def.StartHour, "planned start hour (0-23)")
	energyOptimizeCmd.Flags().Float64("temperature", def.TargetTemperature, "target temperature in °C (500-1200)")
	energyOptimizeCmd.Flags().Int("deadline", def.Deadline, "hour the run must finish by (6-24)")

	copilotAskCmd.Flags().Duration("delay", 0, "simulated retrieval delay")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(energyCmd)
	rootCmd.AddCommand(copilotCmd)
	configCmd.AddCommand(validateConfigCmd)
	energyCmd.AddCommand(energyOptimizeCmd)
	copilotCmd.AddCommand(copilotAskCmd)
}

// main is the entry point
func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
