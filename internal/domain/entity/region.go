package entity

// Region is the top-level scoping dimension for users and payment records.
// The conference runs in exactly two regions.
type Region string

const (
	RegionEast Region = "East Rayalaseema"
	RegionWest Region = "West Rayalaseema"
)

var regionCodes = map[Region]string{
	RegionEast: "ER",
	RegionWest: "WR",
}

// IsValid returns true if the region is one of the two supported regions
func (r Region) IsValid() bool {
	_, ok := regionCodes[r]
	return ok
}

// Code returns the short code used inside registration IDs (ER or WR)
func (r Region) Code() string {
	return regionCodes[r]
}

// String returns the string representation of the region
func (r Region) String() string {
	return string(r)
}
