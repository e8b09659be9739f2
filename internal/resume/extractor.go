package resume

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/jobscout/internal/vocabulary"
)

const (
	summaryScanLines  = 10
	summaryMinBlock   = 50
	summaryMinLineLen = 100
)

// Extractor turns normalized resume text into a Profile. It holds no mutable state and
// can be shared between goroutines.
type Extractor struct {
	vocab  *vocabulary.Vocabulary
	logger *zap.Logger
}

func New(vocab *vocabulary.Vocabulary, logger *zap.Logger) *Extractor {
	if vocab == nil {
		vocab = vocabulary.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{vocab: vocab, logger: logger}
}

// Extract never fails. Fields that cannot be found are left empty or unspecified.
func (e *Extractor) Extract(text string) Profile {
	lines := strings.Split(text, "\n")
	lower := strings.ToLower(text)

	years := maxYears(text)
	p := Profile{
		Name:            findName(lines),
		Email:           findEmail(text),
		Phone:           findPhone(text),
		Location:        findLocation(text, e.vocab.HasSkill),
		LinkedIn:        findLinkedIn(text),
		GitHub:          findGitHub(text),
		Skills:          e.skills(text),
		YearsExperience: years,
		Seniority:       decideSeniority(years, countSeniority(lower, e.vocab.Seniority())),
		Education:       e.education(text),
		Summary:         summary(text, lines),
		Confidence:      confidence(years),
		TextLength:      len(text),
		Vocabulary:      e.vocab.Version(),
	}

	if missing := missingFields(p); len(missing) > 0 {
		e.logger.Debug("resume fields degraded to defaults",
			zap.Strings("fields", missing),
			zap.Int("text_length", p.TextLength),
		)
	}

	e.logger.Info("extracted resume profile",
		zap.Int("skills", len(p.Skills)),
		zap.Stringer("seniority", p.Seniority),
		zap.Stringer("years", p.YearsExperience),
		zap.Float64("confidence", p.Confidence),
	)

	return p
}

func (e *Extractor) skills(text string) []string {
	found := e.vocab.FindSkills(text)
	for _, block := range blocks(text, reSkillsHeading, skillsBlockLimit) {
		found = append(found, e.vocab.FindSkills(block)...)
	}
	return vocabulary.DisplayAll(found)
}

func (e *Extractor) education(text string) []string {
	var found []string
	for _, block := range blocks(text, reEducationHeading, educationBlockLimit) {
		found = append(found, e.vocab.FindEducation(block)...)
	}
	if len(found) == 0 {
		found = e.vocab.FindEducation(text)
	}
	return vocabulary.DisplayAll(found)
}

func summary(text string, lines []string) string {
	for _, block := range blocks(text, reSummaryHeading, summaryBlockLimit) {
		if utf8.RuneCountInString(block) > summaryMinBlock {
			return strings.Join(strings.Fields(block), " ")
		}
	}

	if len(lines) > summaryScanLines {
		lines = lines[:summaryScanLines]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) > summaryMinLineLen && !hasMarker(line, contactMarkers) {
			return truncateRunes(line, summaryBlockLimit)
		}
	}

	return DefaultSummary
}

func missingFields(p Profile) []string {
	var missing []string
	check := func(name string, empty bool) {
		if empty {
			missing = append(missing, name)
		}
	}
	check("name", p.Name == "")
	check("email", p.Email == "")
	check("phone", p.Phone == "")
	check("location", p.Location == "")
	check("skills", len(p.Skills) == 0)
	check("years_experience", !p.YearsExperience.Specified())
	check("education", len(p.Education) == 0)
	check("summary", p.Summary == DefaultSummary)
	return missing
}
