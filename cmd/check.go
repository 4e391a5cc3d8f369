package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tuya/tuya-pip/config"
	"github.com/tuya/tuya-pip/firewall"
)

var checkURL string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check if the firewall is reachable",
	Example: `  tuya-pip check
  tuya-pip check --url http://localhost:8000`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkURL, "url", "", "firewall API URL (defaults to TUYA_FIREWALL_URL or config file)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	out := newRenderer()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	baseURL := checkURL
	if baseURL == "" {
		baseURL = config.ResolveFirewallURL(firewallURL, cfg)
	}

	client := firewall.New(baseURL,
		firewall.WithProbeTimeout(cfg.ProbeTimeout()),
		firewall.WithLogger(newLogger()),
	)
	defer client.Close()

	var reachable bool
	out.WithSpinner("Checking firewall connectivity...", func() {
		reachable = client.CheckConnectivity(cmd.Context())
	})

	if !reachable {
		out.Error("Firewall is not reachable at " + baseURL)
		out.Println("Make sure python-package-firewall is running")
		return &exitCodeError{code: 1}
	}
	out.Success("Firewall is reachable at " + baseURL)
	return nil
}
