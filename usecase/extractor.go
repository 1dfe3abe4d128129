package usecase

import (
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/manthansachdev12/Hackwave-pragyan/domain/entities"
)

// ComplaintExtractor finds complaints the backend asked to file. It returns
// the reply text to speak, with any markup removed, and the intents found.
type ComplaintExtractor interface {
	Extract(reply string) (string, []entities.ComplaintIntent)
}

var (
	complaintTagPattern = regexp.MustCompile(`(?s)\[\[COMPLAINT\s*(\{.*?\})\s*\]\]`)
	blankRunPattern     = regexp.MustCompile(`[ \t]{2,}`)
)

// TaggedComplaintExtractor reads [[COMPLAINT {...}]] tags out of a reply
type TaggedComplaintExtractor struct {
	logger *zap.Logger
}

// NewTaggedComplaintExtractor creates a tag-based extractor
func NewTaggedComplaintExtractor(logger *zap.Logger) *TaggedComplaintExtractor {
	return &TaggedComplaintExtractor{logger: logger}
}

// Extract implements ComplaintExtractor
func (e *TaggedComplaintExtractor) Extract(reply string) (string, []entities.ComplaintIntent) {
	var intents []entities.ComplaintIntent

	for _, match := range complaintTagPattern.FindAllStringSubmatch(reply, -1) {
		var intent entities.ComplaintIntent
		if err := json.Unmarshal([]byte(match[1]), &intent); err != nil {
			e.logger.Warn("Dropping malformed complaint tag", zap.String("payload", match[1]), zap.Error(err))
			continue
		}

		intent.Service = strings.TrimSpace(intent.Service)
		intent.Description = strings.TrimSpace(intent.Description)
		intent.Location = strings.TrimSpace(intent.Location)
		if !intent.Complete() {
			e.logger.Warn("Dropping incomplete complaint tag", zap.String("payload", match[1]))
			continue
		}

		intents = append(intents, intent)
	}

	spoken := complaintTagPattern.ReplaceAllString(reply, "")
	// Unterminated tags are never spoken
	if i := strings.Index(spoken, entities.ComplaintTagOpen); i >= 0 {
		spoken = spoken[:i]
	}

	return tidy(spoken), intents
}

func tidy(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(blankRunPattern.ReplaceAllString(line, " "))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, " ")
}
