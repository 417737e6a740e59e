package common

import "fmt"

// Must be manually updated!
// Before releasing: verify the version number and set Prerelease to ""
// After releasing: increase the Patch number and set Prerelease to "-pre"
var version = Version{
	Major:      0,
	Minor:      3,
	Patch:      0,
	Prerelease: "-pre",
}

// Set via -ldflags. Example:
//
//	go install -ldflags "-X github.com/drand/cbcsuite/common.BUILDDATE=`date -u +%d/%m/%Y@%H:%M:%S` -X github.com/drand/cbcsuite/common.COMMIT=`git rev-parse HEAD`"
var (
	COMMIT    = ""
	BUILDDATE = ""
)

// GetAppVersion returns the version of this build.
func GetAppVersion() Version {
	return version
}

// Version is a semantic version.
type Version struct {
	Major      uint32
	Minor      uint32
	Patch      uint32
	Prerelease string
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d%s", v.Major, v.Minor, v.Patch, v.Prerelease)
}
