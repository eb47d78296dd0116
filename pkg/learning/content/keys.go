package content

import (
	"fmt"
	"math"
	"strings"
)

// CacheKeyInput collects every field that may change which content a user
// should be served. Two inputs with equal fields always build the same key.
type CacheKeyInput struct {
	UserId          string
	ContainerId     string
	Subject         string
	CareerId        string
	SkillId         string
	AdaptationLevel string
	RecentAccuracy  float64 // 0-100, bucketed to the nearest 10
}

// BuildCacheKey is the single pure key constructor. The accuracy component
// is rounded to a coarse bucket so minor score drift does not invalidate
// otherwise identical content.
func BuildCacheKey(in CacheKeyInput) string {
	bucket := int(math.Round(in.RecentAccuracy/10) * 10)
	parts := []string{
		"content",
		in.UserId,
		in.ContainerId,
		strings.ToLower(in.Subject),
		orDash(in.CareerId),
		orDash(in.SkillId),
		fmt.Sprintf("%s-%d", in.AdaptationLevel, bucket),
	}
	return strings.Join(parts, ":")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
