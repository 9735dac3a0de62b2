package args

type OutputFormatFlags struct {
	OutputFormat string `group:"misc" help:"Output format, yaml, json or table." default:"yaml"`
}
