package protocol

import (
	"math"
	"slices"
	"strconv"
)

// Version identifies a revision of the wire format a client speaks. Versions are totally ordered, and
// behaviour differences between revisions are always expressed as ordered comparisons against a
// threshold, see Feature.
type Version int32

const (
	V1_20_0_23   Version = 582
	V1_20_0      Version = 589
	V1_20_10_21  Version = 593
	V1_20_10     Version = 594
	V1_20_30_24  Version = 617
	V1_20_30     Version = 618
	V1_20_40     Version = 622
	V1_20_50     Version = 630
	V1_20_60     Version = 649
	V1_20_70     Version = 662
	V1_20_80     Version = 671
	V1_21_0      Version = 685
	V1_21_2      Version = 686
	V1_21_20     Version = 712
	V1_21_30     Version = 729
	V1_21_40     Version = 748
	V1_21_50_26  Version = 765
	V1_21_50     Version = 766
	V1_21_60     Version = 776
	V1_21_70_24  Version = 783
	V1_21_70     Version = 786
	V1_21_80     Version = 800
	V1_21_90     Version = 818
	V1_21_93     Version = 819
	V1_21_100    Version = 827
	V1_21_110_26 Version = 843
	V1_21_111    Version = 844
	V1_21_120    Version = 859
	V1_21_130    Version = 897
	V1_26_0      Version = 924
)

// Unknown is the version of a connection that has not identified itself yet. It compares greater than
// every real version, so field gating picks the newest layout, and Resolve maps it to Latest for
// table lookups.
const Unknown Version = math.MaxInt32

// SupportedVersions holds every version prism accepts, in ascending order.
var SupportedVersions = []Version{
	V1_20_0_23, V1_20_0, V1_20_10_21, V1_20_10, V1_20_30_24, V1_20_30, V1_20_40, V1_20_50, V1_20_60,
	V1_20_70, V1_20_80, V1_21_0, V1_21_2, V1_21_20, V1_21_30, V1_21_40, V1_21_50_26, V1_21_50,
	V1_21_60, V1_21_70_24, V1_21_70, V1_21_80, V1_21_90, V1_21_93, V1_21_100, V1_21_110_26,
	V1_21_111, V1_21_120, V1_21_130, V1_26_0,
}

// Latest is the newest supported version.
var Latest = SupportedVersions[len(SupportedVersions)-1]

// Supported reports whether v is one of SupportedVersions.
func Supported(v Version) bool {
	_, ok := slices.BinarySearch(SupportedVersions, v)
	return ok
}

// Resolve returns the version used for registry and palette lookups: Latest for Unknown, v otherwise.
func (v Version) Resolve() Version {
	if v == Unknown {
		return Latest
	}
	return v
}

// String ...
func (v Version) String() string {
	if v == Unknown {
		return "unknown"
	}
	if name, ok := versionNames[v]; ok {
		return name
	}
	return strconv.Itoa(int(v))
}

var versionNames = map[Version]string{
	V1_20_0_23:   "1.20.0.23",
	V1_20_0:      "1.20.0",
	V1_20_10_21:  "1.20.10.21",
	V1_20_10:     "1.20.10",
	V1_20_30_24:  "1.20.30.24",
	V1_20_30:     "1.20.30",
	V1_20_40:     "1.20.40",
	V1_20_50:     "1.20.50",
	V1_20_60:     "1.20.60",
	V1_20_70:     "1.20.70",
	V1_20_80:     "1.20.80",
	V1_21_0:      "1.21.0",
	V1_21_2:      "1.21.2",
	V1_21_20:     "1.21.20",
	V1_21_30:     "1.21.30",
	V1_21_40:     "1.21.40",
	V1_21_50_26:  "1.21.50.26",
	V1_21_50:     "1.21.50",
	V1_21_60:     "1.21.60",
	V1_21_70_24:  "1.21.70.24",
	V1_21_70:     "1.21.70",
	V1_21_80:     "1.21.80",
	V1_21_90:     "1.21.90",
	V1_21_93:     "1.21.93",
	V1_21_100:    "1.21.100",
	V1_21_110_26: "1.21.110.26",
	V1_21_111:    "1.21.111",
	V1_21_120:    "1.21.120",
	V1_21_130:    "1.21.130",
	V1_26_0:      "1.26.0",
}
