package resume

import (
	"regexp"
	"strconv"

	"github.com/spigell/jobscout/internal/level"
	"github.com/spigell/jobscout/internal/vocabulary"
)

const (
	seniorYears = 7
	midYears    = 3

	confidenceExplicit = 0.8
	confidenceInferred = 0.6
)

var reYears = regexp.MustCompile(`(?i)(\d+)[\s\-+]*(?:years?|yrs?)[\s\-+]*(?:of[ \t]+)?(?:experience|exp)\b`)

type seniorityCounts struct {
	senior, mid, junior int
}

func countSeniority(lower string, kw vocabulary.Keywords) seniorityCounts {
	count := func(words []string) int {
		n := 0
		for _, w := range words {
			n += vocabulary.CountWord(lower, w)
		}
		return n
	}
	return seniorityCounts{
		senior: count(kw.Senior),
		mid:    count(kw.Mid),
		junior: count(kw.Junior),
	}
}

// maxYears returns the largest explicit "N years of experience" figure, or
// UnspecifiedYears when the text states none above zero.
func maxYears(text string) Years {
	best := UnspecifiedYears
	for _, m := range reYears.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		if Years(n) > best {
			best = Years(n)
		}
	}
	return best
}

func decideSeniority(years Years, c seniorityCounts) level.Seniority {
	switch {
	case years >= seniorYears || c.senior > c.mid+c.junior:
		return level.Senior
	case years >= midYears || c.mid > c.junior:
		return level.Mid
	default:
		return level.Junior
	}
}

func confidence(years Years) float64 {
	if years.Specified() {
		return confidenceExplicit
	}
	return confidenceInferred
}
