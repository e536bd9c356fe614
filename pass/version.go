package pass

// Version information for the looptune pass.
const (
	// Version is the current version of the pass.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// Info provides information about the pass implementation.
type Info struct {
	// Version is the pass version string.
	Version string

	// Discovery is the loop discovery algorithm used.
	Discovery string

	// FeaturesFile is the default feature-record destination.
	FeaturesFile string

	// ActionsFile is the default action-record source.
	ActionsFile string
}

// GetInfo returns information about the pass implementation.
//
// Example:
//
//	info := pass.GetInfo()
//	fmt.Printf("looptune %s (%s)\n", info.Version, info.Discovery)
func GetInfo() Info {
	return Info{
		Version:      Version,
		Discovery:    "dominance back-edge natural loops",
		FeaturesFile: DefaultFeaturesFile,
		ActionsFile:  DefaultActionsFile,
	}
}
