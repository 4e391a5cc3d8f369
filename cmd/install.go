package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tuya/tuya-pip/config"
	"github.com/tuya/tuya-pip/firewall"
	"github.com/tuya/tuya-pip/internal/tui"
	"github.com/tuya/tuya-pip/pkgspec"
	"github.com/tuya/tuya-pip/runner"
)

var (
	force         bool
	upgrade       bool
	noDeps        bool
	requirement   string
	indexURL      string
	extraIndexURL string
	trustedHost   string
)

var installCmd = &cobra.Command{
	Use:   "install [packages...]",
	Short: "Install packages with security validation",
	Example: `  tuya-pip install requests
  tuya-pip install keras==3.11.2
  tuya-pip install -r requirements.txt
  tuya-pip install keras --force
  tuya-pip install keras --index-url http://127.0.0.1:8000/simple/`,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVarP(&force, "force", "f", false, "skip security validation (use with caution)")
	installCmd.Flags().BoolVarP(&upgrade, "upgrade", "U", false, "upgrade package to the newest available version")
	installCmd.Flags().StringVarP(&requirement, "requirement", "r", "", "install from the given requirements file")
	installCmd.Flags().StringVarP(&indexURL, "index-url", "i", "", "base URL of the Python Package Index")
	installCmd.Flags().StringVar(&extraIndexURL, "extra-index-url", "", "extra package index URL in addition to --index-url")
	installCmd.Flags().StringVar(&trustedHost, "trusted-host", "", "mark this host as trusted")
	installCmd.Flags().BoolVar(&noDeps, "no-deps", false, "don't install package dependencies")
}

func runInstall(cmd *cobra.Command, args []string) error {
	out := newRenderer()

	specs, err := resolvePackages(args, requirement)
	if err != nil {
		out.Error(err.Error())
		return &exitCodeError{code: 1}
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if force {
		out.Warning("Skipping security validation (--force flag used)")
	} else {
		baseURL := config.ResolveFirewallURL(firewallURL, cfg)
		if !validatePackages(cmd, out, baseURL, cfg, specs) {
			out.Error("Installation aborted due to security policy violations")
			return &exitCodeError{code: 1}
		}
	}

	out.Installing(strings.Join(specs, ", "))

	argv := runner.PipArgs(cfg.PipCommand, runner.InstallOptions{
		Packages:      specs,
		Requirement:   requirement,
		IndexURL:      indexURL,
		ExtraIndexURL: extraIndexURL,
		TrustedHost:   trustedHost,
		Upgrade:       upgrade,
		NoDeps:        noDeps,
	})

	mon := runner.NewMonitor(os.Stdout)
	code, err := runner.Run(cmd.Context(), argv, mon)
	if err != nil {
		out.Error(fmt.Sprintf("Failed to execute pip: %v", err))
		return &exitCodeError{code: 1}
	}

	if blocked := mon.Blocked(); len(blocked) > 0 && code != 0 {
		out.Println("")
		out.Error(fmt.Sprintf("Firewall blocked %d package(s)", len(blocked)))
		for _, pkg := range blocked {
			out.BlockedItem(pkg.String())
		}
		out.Println("")
		out.Info(fmt.Sprintf("For details, run: tuya-pip audit %s", blocked[0].String()))
	}

	if code != 0 {
		return &exitCodeError{code: code}
	}
	return nil
}

// validatePackages checks every spec sequentially against the firewall,
// stopping at the first block. The client is shared across all calls and
// released on every return path.
func validatePackages(cmd *cobra.Command, out *tui.Renderer, baseURL string, cfg config.Config, specs []string) bool {
	client := firewall.New(baseURL,
		firewall.WithTimeout(cfg.Timeout()),
		firewall.WithProbeTimeout(cfg.ProbeTimeout()),
		firewall.WithLogger(newLogger()),
	)
	defer client.Close()

	for _, spec := range specs {
		ref, err := pkgspec.Parse(spec)
		if err != nil {
			out.Error(err.Error())
			return false
		}

		var result firewall.Result
		out.WithSpinner("Checking "+spec+"...", func() {
			result = client.Validate(cmd.Context(), ref.Name, ref.Version)
		})

		if result.Status == firewall.Block {
			version := ref.Version
			if version == "" {
				version = "latest"
			}
			out.BlockedPanel(result.Package, version, result.Reason, client.AuditURL(ref.Name))
			return false
		}
		out.Success(spec)
	}
	return true
}

func resolvePackages(args []string, requirement string) ([]string, error) {
	var specs []string
	switch {
	case requirement != "":
		loaded, err := pkgspec.LoadRequirementsFile(requirement)
		if err != nil {
			return nil, err
		}
		specs = loaded
	case len(args) > 0:
		specs = args
	default:
		return nil, fmt.Errorf("no packages specified; use 'tuya-pip install <package>' or '-r requirements.txt'")
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no packages to install")
	}
	return specs, nil
}
