package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/codelldb/lldb-dist/cmd/lldb-dist/args"
	"github.com/codelldb/lldb-dist/pkg/utils"
	"github.com/codelldb/lldb-dist/pkg/yaml"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type cli struct {
	args.GlobalFlags

	Build         buildCmd         `cmd:"" help:"Build and package LLDB for a target"`
	BuildPython   buildPythonCmd   `cmd:"" help:"Build the trimmed python runtime for a target"`
	DockerEnv     dockerEnvCmd     `cmd:"" help:"Start an interactive shell in the Linux builder container"`
	ExtractPython extractPythonCmd `cmd:"" help:"Extract the host python distribution into the build directory"`
	ListTargets   listTargetsCmd   `cmd:"" help:"Outputs all known targets and their CMake variables"`
	Package       packageCmd       `cmd:"" help:"Package an existing LLDB build into zip archives"`

	Version versionCmd `cmd:"" help:"Print lldb-dist version"`
}

var flagGroups = []groupInfo{
	{group: "target", title: "Target arguments:", description: "Select the target triple and extend the target table."},
	{group: "build", title: "Build arguments:", description: "Control where and how dependencies and LLDB are built."},
	{group: "python", title: "Python arguments:", description: "Locate the python-build-standalone distributions."},
	{group: "package", title: "Package arguments:", description: "Control the produced zip archives."},
	{group: "docker", title: "Docker arguments:"},
	{group: "misc", title: "Misc arguments:", description: "Command specific arguments."},
	{group: "global", title: "Global arguments:"},
}

func (c *cli) Help() string {
	return `Builds LLDB together with a trimmed python runtime, libxml2 and swig,
and packages the result into redistributable zip archives.`
}

func (c *cli) setupLogs(stderr io.Writer) error {
	lvl, err := log.ParseLevel(c.Verbosity)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)

	colors := false
	if f, ok := stderr.(*os.File); ok && !c.NoColor {
		colors = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		if colors {
			stderr = colorable.NewColorable(f)
		}
	}
	log.SetOutput(stderr)
	log.SetFormatter(&log.TextFormatter{
		ForceColors:   colors,
		DisableColors: !colors,
		FullTimestamp: true,
	})
	return nil
}

// configFileCandidates returns the config files looked up when --config is
// not passed, in order of precedence.
func configFileCandidates() []string {
	ret := []string{yaml.FixPathExt("lldb-dist.yaml")}
	home, err := homedir.Dir()
	if err == nil {
		ret = append(ret, yaml.FixPathExt(filepath.Join(home, ".config", "lldb-dist", "config.yaml")))
	}
	return ret
}

func (c *cli) loadViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	configFile := c.ConfigFile()
	if configFile == "" {
		for _, p := range configFileCandidates() {
			if utils.IsFile(p) {
				configFile = p
				break
			}
		}
	}
	if configFile == "" {
		return v, nil
	}

	log.Debugf("Loading config from %s", configFile)
	v.SetConfigFile(configFile)
	err := v.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
	}
	return v, nil
}

func (c *cli) preRun(cmd *cobra.Command) error {
	v, err := c.loadViper()
	if err != nil {
		return err
	}
	err = copyViperValuesToCobraCmd(v, cmd)
	if err != nil {
		return err
	}
	_, stderr := getStdStreams(cmd.Context())
	return c.setupLogs(stderr)
}

func buildRootCmd(c *cli) (*cobra.Command, error) {
	rootCmd, err := buildRootCobraCmd(c, "lldb-dist",
		"Build and package LLDB",
		c.Help(),
		flagGroups)
	if err != nil {
		return nil, err
	}
	rootCmd.SilenceUsage = true
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return c.preRun(cmd)
	}
	return rootCmd, nil
}

func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err := ExecuteWithArgs(ctx, os.Args[1:])
	if err != nil {
		cancel()
		os.Exit(1)
	}
}

func ExecuteWithArgs(ctx context.Context, args []string) error {
	var c cli
	rootCmd, err := buildRootCmd(&c)
	if err != nil {
		return err
	}
	stdout, stderr := getStdStreams(ctx)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}
