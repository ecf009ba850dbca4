package game

import (
	"math"
	"strconv"
	"strings"

	"github.com/shadil-rayyan/Math-Mantra-sub000/models"
)

// compassPoints lists the 16 compass directions clockwise from north, 22.5 degrees apart.
var compassPoints = []string{
	"north", "north-northeast", "northeast", "east-northeast",
	"east", "east-southeast", "southeast", "south-southeast",
	"south", "south-southwest", "southwest", "west-southwest",
	"west", "west-northwest", "northwest", "north-northwest",
}

// HeadingTolerance is the largest accepted distance between a heading and a compass label.
const HeadingTolerance = 22.5

// DirectionToDegrees returns the bearing of a compass label.
func DirectionToDegrees(direction string) (float64, bool) {
	d := strings.ToLower(strings.TrimSpace(direction))
	d = strings.ReplaceAll(d, " ", "-")
	for i, p := range compassPoints {
		if p == d {
			return float64(i) * 22.5, true
		}
	}
	return 0, false
}

// CompassDirection returns the nearest compass label for a heading.
func CompassDirection(degrees float64) string {
	deg := math.Mod(math.Mod(degrees, 360)+360, 360)
	return compassPoints[int((deg+11.25)/22.5)%len(compassPoints)]
}

// AngleDifference returns the smallest angle between two headings.
func AngleDifference(a, b float64) float64 {
	diff := math.Abs(math.Mod(math.Mod(a, 360)+360, 360) - math.Mod(math.Mod(b, 360)+360, 360))
	if diff > 180 {
		return 360 - diff
	}
	return diff
}

// Judge reports whether answer is correct for q.
// Numeric questions compare integers. Label questions accept the label itself,
// case-insensitively, or a heading in degrees close enough to a compass label.
func Judge(q models.Question, answer string) bool {
	answer = strings.TrimSpace(answer)
	if q.Target == "" {
		n, err := strconv.Atoi(answer)
		return err == nil && n == q.Answer
	}

	if strings.EqualFold(answer, strings.TrimSpace(q.Target)) {
		return true
	}

	bearing, ok := DirectionToDegrees(q.Target)
	if !ok {
		return false
	}
	heading, err := strconv.ParseFloat(answer, 64)
	if err != nil {
		return false
	}
	return AngleDifference(heading, bearing) <= HeadingTolerance
}
