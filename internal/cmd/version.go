package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/Dallionking/quantdesk/internal/config"
	"github.com/Dallionking/quantdesk/internal/tui/styles"
)

// Set with -ldflags "-X github.com/Dallionking/quantdesk/internal/cmd.Version=...".
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:         "version",
	Annotations: lenientConfig,
	Short:       "Print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		version, commit := buildVersion()
		if versionShort {
			fmt.Println(version)
			return
		}

		cfg := config.Get()
		row := func(label, value string) {
			fmt.Printf("%s %s\n", styles.Label.Render(fmt.Sprintf("%-10s", label)), styles.Value.Render(value))
		}
		fmt.Println(styles.Cyan(styles.CompactLogo) + "  " + styles.Value.Render(version))
		fmt.Println()
		row("COMMIT", commit)
		row("BUILT", BuildDate)
		row("GO", runtime.Version())
		row("OS/ARCH", runtime.GOOS+"/"+runtime.GOARCH)
		row("BACKTEST", cfg.Services.Backtest)
		row("VALUATION", cfg.Services.Valuation)
	},
}

// buildVersion prefers ldflags values and falls back to the module build
// info that `go install` records.
func buildVersion() (version, commit string) {
	version, commit = Version, GitCommit
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version, commit
	}
	if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	if commit == "none" {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				commit = s.Value[:7]
			}
		}
	}
	return version, commit
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version")
	rootCmd.AddCommand(versionCmd)
}
