package version

import "fmt"

// Version is the service version, kept in sync with the release tag.
var Version = "0.3.1"

// DevVersion is the development version.
var DevVersion = "0.3.1"

func GetCurrentVersion(mode string) string {
	if mode == "dev" {
		return DevVersion
	}
	return Version
}

// GetSchemaVersion returns the schema version the binary expects,
// which is the major.minor of the service version.
func GetSchemaVersion(mode string) string {
	current := GetCurrentVersion(mode)
	return fmt.Sprintf("%s.0", MajorMinor(current))
}

// MajorMinor returns the "major.minor" prefix of a version string.
func MajorMinor(version string) string {
	for i := len(version) - 1; i >= 0; i-- {
		if version[i] == '.' {
			return version[:i]
		}
	}
	return version
}
