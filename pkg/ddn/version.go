package ddn

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// MeetsMinimum reports whether a product firmware version satisfies the
// given minimum. Versions are semver; a leading "v" is tolerated.
func MeetsMinimum(version, minimum string) (bool, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("ddn: parse version %q: %w", version, err)
	}
	min, err := semver.NewVersion(minimum)
	if err != nil {
		return false, fmt.Errorf("ddn: parse minimum %q: %w", minimum, err)
	}
	return !v.LessThan(min), nil
}

// RequireFirmware errors when a product's reported firmware is below the
// minimum a test run requires.
func RequireFirmware(product, version, minimum string) error {
	ok, err := MeetsMinimum(version, minimum)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("ddn: %s firmware %s is below required %s", product, version, minimum)
	}
	return nil
}
