package toolbox

import (
	"fmt"
	"strings"
)

// Region is a permitted BigQuery region. Only enumerated values are ever
// interpolated into a query template; the region lands inside a
// backtick-quoted identifier segment where parameter binding is
// unsupported, so rejection by allow-list is the complete injection
// defense.
type Region string

// Accepted BigQuery regions.
const (
	RegionEuropeWest2 Region = "europe-west2"
	RegionUSEast1     Region = "us-east1"
)

// Regions returns the accepted regions in a fixed order.
func Regions() []Region {
	return []Region{RegionEuropeWest2, RegionUSEast1}
}

// String returns the canonical region name.
func (r Region) String() string {
	return string(r)
}

// InvalidRegionError is returned when a region is not a member of the fixed
// enumeration. It carries the attempted value and the list of valid values.
type InvalidRegionError struct {
	Region string
	Valid  []Region
}

// Error implements the error interface.
func (e *InvalidRegionError) Error() string {
	valid := make([]string, len(e.Valid))
	for i, r := range e.Valid {
		valid[i] = string(r)
	}
	return fmt.Sprintf("region %q is not valid: must be one of: %s",
		e.Region, strings.Join(valid, ", "))
}

// ParseRegion validates a region string against the fixed enumeration and
// returns it in normalized canonical form.
func ParseRegion(s string) (Region, error) {
	normalized := Region(strings.ToLower(strings.TrimSpace(s)))
	for _, r := range Regions() {
		if normalized == r {
			return r, nil
		}
	}
	return "", &InvalidRegionError{Region: s, Valid: Regions()}
}
