package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/jobscout/internal/ai"
	"github.com/spigell/jobscout/internal/jobs"
	"github.com/spigell/jobscout/internal/resume"
	"github.com/spigell/jobscout/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

//go:embed system.md
var systemInstruction string

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength     = 200
	maxUserInstructionRunes = 500
	noneValue               = "none"
)

// PromptOverrides are user preferences added to every request.
type PromptOverrides struct {
	ExtraCriteria    string `mapstructure:"extra-criteria"`
	DealBreakers     string `mapstructure:"deal-breakers"`
	UserInstructions string `mapstructure:"user-instructions"`
}

type Matcher struct {
	generator contentGenerator
	minScore  float64
	logger    *zap.Logger
	maxLogLen int
	overrides PromptOverrides
}

func NewMatcher(generator contentGenerator, minScore float64, maxLogLength int, logger *zap.Logger) *Matcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Matcher{
		generator: generator,
		minScore:  minScore,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (m *Matcher) SetPromptOverrides(o PromptOverrides) {
	m.overrides = o
}

// profilePayload is what the model sees of a profile. Contact details are not sent.
type profilePayload struct {
	Skills            []string     `json:"skills"`
	Seniority         string       `json:"seniority"`
	YearsExperience   resume.Years `json:"years_experience"`
	Education         []string     `json:"education"`
	Summary           string       `json:"summary"`
	PreferredLocation string       `json:"preferred_location"`
}

func (m *Matcher) Evaluate(ctx context.Context, profile *resume.Profile, posting *jobs.Posting) (*ai.FitAssessment, error) {
	if profile == nil {
		return nil, fmt.Errorf("profile is required")
	}
	if posting == nil {
		return nil, fmt.Errorf("posting is required")
	}

	profileJSON, err := json.MarshalIndent(profilePayload{
		Skills:            profile.Skills,
		Seniority:         profile.Seniority.String(),
		YearsExperience:   profile.YearsExperience,
		Education:         profile.Education,
		Summary:           profile.Summary,
		PreferredLocation: profile.Preferred(),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal profile payload: %w", err)
	}

	postingJSON, err := json.MarshalIndent(posting, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal posting payload: %w", err)
	}

	prompt := m.buildPrompt(string(profileJSON), string(postingJSON))

	m.logger.Debug("gemini generate content request",
		zap.String("job_id", posting.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, m.maxLogLen)),
	)

	raw, err := m.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini generate content response",
		zap.String("job_id", posting.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, m.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	if m.minScore > 0 && assessment.Score < m.minScore {
		m.logger.Debug("set fit to false by score threshold",
			zap.String("job_id", posting.ID),
			zap.Float64("score", assessment.Score),
			zap.Float64("threshold", m.minScore),
		)
		assessment.Fit = false
	}

	assessment.Raw = raw
	return assessment, nil
}

func (m *Matcher) buildPrompt(profileJSON, postingJSON string) string {
	return strings.NewReplacer(
		"{{EXTRA_CRITERIA}}", singleLine(m.overrides.ExtraCriteria),
		"{{DEAL_BREAKERS}}", singleLine(m.overrides.DealBreakers),
		"{{USER_INSTRUCTIONS}}", instructionsBlock(m.overrides.UserInstructions),
		"{{PROFILE_JSON}}", profileJSON,
		"{{POSTING_JSON}}", postingJSON,
	).Replace(promptTemplate)
}

// Square brackets are reserved for prompt section headers.
var bracketReplacer = strings.NewReplacer("[", "(", "]", ")")

func singleLine(s string) string {
	s = strings.Join(strings.Fields(bracketReplacer.Replace(s)), " ")
	if s == "" {
		return noneValue
	}
	return s
}

func instructionsBlock(s string) string {
	s = strings.TrimSpace(bracketReplacer.Replace(s))
	if utf8.RuneCountInString(s) > maxUserInstructionRunes {
		s = string([]rune(s)[:maxUserInstructionRunes])
	}

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, "  - "+line)
		}
	}
	if len(lines) == 0 {
		return "  - " + noneValue
	}
	return strings.Join(lines, "\n")
}

func parseResponse(raw string) (*ai.FitAssessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		score = 0
	}

	return &ai.FitAssessment{
		Fit:    coerceBool(data["fit"]),
		Score:  score,
		Reason: coerceString(data["reason"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case nil:
		return ""
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
