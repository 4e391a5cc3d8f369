// Package cmd implements the tuya-pip CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tuya/tuya-pip/internal/tui"
)

var (
	cfgFile       string
	firewallURL   string
	verbose       bool
	themeOverride string
)

var rootCmd = &cobra.Command{
	Use:          "tuya-pip",
	Short:        "Secure pip wrapper with firewall validation",
	Long:         "tuya-pip validates packages against a policy firewall before handing them to pip.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "tuya-pip.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&firewallURL, "firewall-url", "", "firewall API URL (overrides TUYA_FIREWALL_URL and config file)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&themeOverride, "theme", "", "color theme: dark, light, or auto")

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(checkCmd)
}

// SetVersionInfo sets the version and commit for display.
func SetVersionInfo(version, commit string) {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("tuya-pip %s (commit: %s)\n", version, commit))
}

// exitCodeError carries a subprocess or policy exit code through cobra.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// Execute runs the root command and exits with the propagated code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var ec *exitCodeError
		if errors.As(err, &ec) {
			os.Exit(ec.code)
		}
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	if !verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
}

func newRenderer() *tui.Renderer {
	return tui.NewRenderer(os.Stdout, tui.NewStyleSet(tui.DetectTheme(themeOverride)))
}
