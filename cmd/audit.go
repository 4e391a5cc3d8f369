package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tuya/tuya-pip/config"
	"github.com/tuya/tuya-pip/firewall"
	"github.com/tuya/tuya-pip/pkgspec"
)

var auditCmd = &cobra.Command{
	Use:   "audit <package>",
	Short: "Check if a package is blocked and why",
	Example: `  tuya-pip audit keras
  tuya-pip audit numpy==2.3.5`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func runAudit(cmd *cobra.Command, args []string) error {
	out := newRenderer()

	// Version pins are ignored: the audit record covers the whole package.
	ref, err := pkgspec.Parse(args[0])
	if err != nil {
		out.Error(err.Error())
		return &exitCodeError{code: 1}
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	baseURL := config.ResolveFirewallURL(firewallURL, cfg)

	client := firewall.New(baseURL,
		firewall.WithTimeout(cfg.Timeout()),
		firewall.WithLogger(newLogger()),
	)
	defer client.Close()

	var info firewall.BlockedInfo
	out.WithSpinner("Checking "+ref.Name+"...", func() {
		info = client.GetBlockedInfo(cmd.Context(), ref.Name)
	})

	switch info.Status {
	case firewall.BlockedStatusBlocked:
		reason := "No specific reason provided"
		if len(info.Reasons) > 0 {
			reason = strings.Join(info.Reasons, "; ")
		}
		out.BlockedPanel(
			info.Package,
			fmt.Sprintf("%d version(s)", info.BlockedVersionCount),
			reason,
			client.AuditURL(ref.Name),
		)
		out.BlockedVersions(info.BlockedVersions)

	case firewall.BlockedStatusAllowed:
		out.Success(fmt.Sprintf("Package '%s' is allowed", info.Package))
		out.Println("No versions are currently blocked by the firewall")

	case firewall.BlockedStatusError:
		out.Error("Error checking package: " + info.Detail)
		return &exitCodeError{code: 1}

	default:
		out.Info("Package status: " + info.Status.String())
	}
	return nil
}
