package args

type GlobalFlags struct {
	Verbosity string           `group:"global" short:"v" help:"Log level (trace, debug, info, warn, error)." default:"info" skipenv:"true"`
	Config    existingFileType `group:"global" help:"Config file with default values for all flags. Defaults to ./lldb-dist.yaml or ~/.config/lldb-dist/config.yaml." exts:"yml,yaml" skipenv:"true"`
	NoColor   bool             `group:"global" help:"Disable colored log output."`
}

func (f *GlobalFlags) ConfigFile() string {
	return f.Config.String()
}
