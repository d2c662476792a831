package deps

import "nmsmc/internal/config"

// BuildRequirements lists the binaries a build invokes.
func BuildRequirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		return nil
	}
	return []Requirement{
		{
			Name:        "psar",
			Command:     cfg.Tools.Psar,
			Description: "Extracts and packs game archives",
		},
		{
			Name:        "MBINCompiler",
			Command:     cfg.Tools.MBINCompiler,
			Description: "Converts documents between binary and EXML form",
		},
	}
}

// CheckSystem reports the binaries from BuildRequirements followed by the
// staging and state directories.
func CheckSystem(cfg *config.Config) []Status {
	if cfg == nil {
		return nil
	}
	statuses := CheckBinaries(BuildRequirements(cfg))
	statuses = append(statuses,
		CheckDirectory("staging_dir", cfg.Paths.StagingDir, "Per-run work directories"),
		CheckDirectory("state_dir", cfg.Paths.StateDir, "Build history and log file"),
	)
	return statuses
}
