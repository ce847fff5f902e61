package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/cvd-tools/cvdget/pkg/domain/model"
)

// Mirror holds mirror selection configuration
type Mirror struct {
	Override   string
	ConfigFile string
	Timeout    time.Duration
}

// Flags returns CLI flags for mirror configuration
func (c *Mirror) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "mirror",
			Usage:       "Fetch from this mirror only, skipping the built-in list",
			Destination: &c.Override,
			Sources:     cli.EnvVars("CVDGET_MIRROR"),
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "TOML file with custom mirror and identity lists",
			Destination: &c.ConfigFile,
			Sources:     cli.EnvVars("CVDGET_CONFIG"),
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "Per-request timeout",
			Value:       30 * time.Second,
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("CVDGET_TIMEOUT"),
		},
	}
}

// fileConfig is the TOML layout of --config files
type fileConfig struct {
	Mirrors    []string `toml:"mirrors"`
	Identities []string `toml:"identities"`
}

// Resolve returns the mirror and identity lists for this run. A config
// file replaces the built-in lists wholesale, and --mirror narrows the
// mirror list to that single entry.
func (c *Mirror) Resolve() ([]string, []string, error) {
	mirrors := model.DefaultMirrors()
	identities := model.DefaultIdentities()

	if c.ConfigFile != "" {
		data, err := os.ReadFile(c.ConfigFile)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to read mirror config", goerr.V("path", c.ConfigFile))
		}
		var fc fileConfig
		if err := toml.Unmarshal(data, &fc); err != nil {
			return nil, nil, goerr.Wrap(err, "failed to parse mirror config", goerr.V("path", c.ConfigFile))
		}
		if len(fc.Mirrors) > 0 {
			mirrors = fc.Mirrors
		}
		if len(fc.Identities) > 0 {
			identities = fc.Identities
		}
	}

	if c.Override != "" {
		mirrors = []string{c.Override}
	}

	return mirrors, identities, nil
}
