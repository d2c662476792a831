package config

const (
	defaultConfigPath     = "~/.config/nmsmc/config.toml"
	projectConfigName     = "nmsmc.toml"
	defaultStagingDir     = "~/.local/share/nmsmc/staging"
	defaultStateDir       = "~/.local/share/nmsmc"
	defaultPsarBinary     = "psar"
	defaultMBINCompiler   = "MBINCompiler"
	defaultExtractTimeout = 300
	defaultCompileTimeout = 600
	defaultPackTimeout    = 300
	defaultStaleAfter     = 24
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"

	envPsar         = "NMSMC_PSAR"
	envMBINCompiler = "NMSMC_MBINCOMPILER"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			StateDir:   defaultStateDir,
		},
		Tools: Tools{
			Psar:           defaultPsarBinary,
			MBINCompiler:   defaultMBINCompiler,
			ExtractTimeout: defaultExtractTimeout,
			CompileTimeout: defaultCompileTimeout,
			PackTimeout:    defaultPackTimeout,
		},
		Build: Build{
			StaleAfterHours: defaultStaleAfter,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
