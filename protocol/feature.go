package protocol

// Feature is a wire format capability that was introduced at a specific version. Packet code consults
// Version.Has at the point of use instead of duplicating packet types per version.
type Feature uint8

const (
	// FeatureItemStackNetID adds the optional stack network ID to item stacks.
	FeatureItemStackNetID Feature = iota
	// FeatureCompressionPrefix prefixes every compressed batch with the compression algorithm ID.
	FeatureCompressionPrefix
	// FeatureContainerCloseType adds the container type to ContainerClose.
	FeatureContainerCloseType
	// FeatureUseItemTrigger adds the trigger type and client prediction to use item transactions.
	FeatureUseItemTrigger
	// FeatureLevelSoundActorID adds the actor unique ID to LevelSoundEvent.
	FeatureLevelSoundActorID
	// FeaturePlayerLocation replaces PlayerInput and RiderJump with PlayerLocation.
	FeaturePlayerLocation
	// FeatureAnimateSwingSource drops the rowing time from Animate in favour of a swing source.
	FeatureAnimateSwingSource
)

// thresholds holds the first version supporting each feature.
var thresholds = [...]Version{
	FeatureItemStackNetID:     V1_20_10,
	FeatureCompressionPrefix:  V1_20_60,
	FeatureContainerCloseType: V1_21_0,
	FeatureUseItemTrigger:     V1_21_20,
	FeatureLevelSoundActorID:  V1_21_70,
	FeaturePlayerLocation:     V1_21_80,
	FeatureAnimateSwingSource: V1_21_130,
}

// Threshold returns the first version that supports f.
func (f Feature) Threshold() Version {
	return thresholds[f]
}

// Has reports whether the wire format of v includes f.
func (v Version) Has(f Feature) bool {
	return v >= thresholds[f]
}
