package config

import (
	"fmt"
	"slices"
	"strings"
)

// ConfigVersions lists the rp1.build.cue formats this build reads, oldest first.
var ConfigVersions = []string{"1"}

func checkConfigVersion(v string) error {
	if slices.Contains(ConfigVersions, v) {
		return nil
	}
	return fmt.Errorf("unsupported configVersion: %q (supported: %s)", v, strings.Join(ConfigVersions, ", "))
}
