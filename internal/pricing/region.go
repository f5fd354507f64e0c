package pricing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Region buckets used for shipping surcharges. Entries are matched as
// substrings of the normalised region name.
var (
	capitalMarker = "ha noi"

	nearCapitalProvinces = []string{
		"bac ninh", "hung yen", "ha nam", "vinh phuc", "hai duong",
		"thai nguyen", "bac giang", "hoa binh", "phu tho",
	}

	centralProvinces = []string{
		"thanh hoa", "nghe an", "ha tinh", "quang binh", "quang tri", "hue",
		"da nang", "quang nam", "quang ngai", "binh dinh", "phu yen", "khanh hoa",
	}

	southernHubProvinces = []string{
		"ho chi minh", "binh duong", "dong nai", "ba ria", "vung tau", "long an", "can tho",
	}
)

// Bucket classifies a region for surcharge purposes.
type Bucket string

const (
	BucketCapital     Bucket = "capital"
	BucketNearCapital Bucket = "near_capital"
	BucketCentral     Bucket = "central"
	BucketSouthernHub Bucket = "southern_hub"
	BucketOther       Bucket = "other"
)

// NormalizeRegion lower-cases name, strips Vietnamese diacritics and
// collapses whitespace so that "Thành phố Hà Nội" becomes "thanh pho ha noi".
func NormalizeRegion(name string) string {
	name = strings.NewReplacer("đ", "d", "Đ", "d").Replace(name)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

// Classify returns the surcharge bucket of a region name.
func Classify(region string) Bucket {
	n := NormalizeRegion(region)
	switch {
	case strings.Contains(n, capitalMarker):
		return BucketCapital
	case containsAny(n, nearCapitalProvinces):
		return BucketNearCapital
	case containsAny(n, centralProvinces):
		return BucketCentral
	case containsAny(n, southernHubProvinces):
		return BucketSouthernHub
	}
	return BucketOther
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
