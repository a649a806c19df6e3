package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
)

// CheckConfigCompatibility checks that a configuration file written for
// configVersion can be read by tools at toolVersion.
//
// Rules:
//   - "main" on either side or an empty configVersion skips the check
//   - major versions must match
//   - the config minor version must not be newer than the tool's
//
// Examples:
//   - tool 1.2.0, config 1.2.5 -> OK
//   - tool 1.3.0, config 1.2.0 -> OK
//   - tool 1.2.0, config 1.3.0 -> ERROR (config needs newer tools)
//   - tool 2.0.0, config 1.2.0 -> ERROR (major differs)
func CheckConfigCompatibility(toolVersion, configVersion string) error {
	toolVersion = strings.TrimPrefix(toolVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	if configVersion == "" || toolVersion == "main" || configVersion == "main" {
		return nil
	}

	tool, err := semver.NewVersion(toolVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid tool version '%s'", toolVersion)
	}

	cfg, err := semver.NewVersion(configVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid config version '%s'", configVersion)
	}

	if tool.Major() != cfg.Major() {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "major version mismatch: tools are %d.x.x but config requires %d.x.x",
			tool.Major(), cfg.Major())
	}

	if cfg.Minor() > tool.Minor() {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "config requires %d.%d.x but tools are %d.%d.x",
			cfg.Major(), cfg.Minor(), tool.Major(), tool.Minor())
	}

	return nil
}
