package summarize

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/dandi/dandi/internal/apperror"
	"github.com/dandi/dandi/internal/model"
	"github.com/go-playground/validator/v10"
)

// MsgInvalidOutput is returned when model output does not match the schema.
const MsgInvalidOutput = "Failed to parse summary from model output"

var (
	fenceRegex = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\\n?(.*?)\\s*```$")
	validate   = validator.New(validator.WithRequiredStructEnabled())
)

// ParseSummary decodes model output into a Summary. A surrounding
// markdown code fence is tolerated.
func ParseSummary(raw string) (*model.Summary, error) {
	text := strings.TrimSpace(raw)
	if m := fenceRegex.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	var s model.Summary
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return nil, apperror.Parse(MsgInvalidOutput, err)
	}
	if err := validate.Struct(s); err != nil {
		return nil, apperror.Parse(MsgInvalidOutput, err)
	}
	return &s, nil
}
