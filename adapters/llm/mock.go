package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/manthansachdev12/Hackwave-pragyan/domain/entities"
	"github.com/manthansachdev12/Hackwave-pragyan/domain/repositories"
)

// mockFiledMarker appears in every reply that files a complaint. Only user
// turns after the latest such reply count toward the next complaint.
const mockFiledMarker = "has been registered"

var mockKeywords = []struct {
	keyword  string
	category string
}{
	{"no water", entities.CategoryWaterSupply},
	{"water", entities.CategoryWaterSupply},
	{"pipeline", entities.CategoryWaterSupply},
	{"tap", entities.CategoryWaterSupply},
	{"garbage", entities.CategoryGarbageCollection},
	{"trash", entities.CategoryGarbageCollection},
	{"dustbin", entities.CategoryGarbageCollection},
	{"recycling", entities.CategoryWasteManagement},
	{"waste", entities.CategoryWasteManagement},
	{"pothole", entities.CategoryRoadIssues},
	{"broken road", entities.CategoryRoadIssues},
	{"road repair", entities.CategoryRoadIssues},
	{"street light", entities.CategoryStreetLight},
	{"streetlight", entities.CategoryStreetLight},
	{"lamp post", entities.CategoryStreetLight},
	{"drain", entities.CategoryDrainage},
	{"sewage", entities.CategoryDrainage},
	{"waterlogging", entities.CategoryDrainage},
	{"property tax", entities.CategoryPropertyTax},
	{"tax", entities.CategoryPropertyTax},
	{"certificate", entities.CategoryCertificates},
}

var (
	mockLocationPattern  = regexp.MustCompile(`(?i)\b((?:sector|ward|block|phase|lane|plot)\s*[\w-]+|[\w-]+\s+(?:road|street|nagar|colony|market|layout|chowk|bazaar))\b`)
	mockEmergencyPattern = regexp.MustCompile(`(?i)\b(fire|accident|injured|emergency)\b`)
)

// MockBackend is a deterministic keyword-driven assistant used for local
// development and tests. It files a complaint once both a service category
// and a location have been mentioned.
type MockBackend struct{}

// Ensure MockBackend implements the ConversationalBackend interface
var _ repositories.ConversationalBackend = (*MockBackend)(nil)

// NewMockBackend creates a new mock backend
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Generate implements ConversationalBackend interface
func (m *MockBackend) Generate(ctx context.Context, history []repositories.ChatMessage) (repositories.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return repositories.ChatMessage{}, err
	}

	var pending []string
	for _, msg := range history {
		switch msg.Role {
		case repositories.UserRole:
			pending = append(pending, msg.Content)
		case repositories.AssistantRole:
			if strings.Contains(msg.Content, mockFiledMarker) {
				pending = nil
			}
		}
	}

	return repositories.ChatMessage{Role: repositories.AssistantRole, Content: mockReply(pending)}, nil
}

func mockReply(pending []string) string {
	if len(pending) == 0 {
		return "Namaste! I'm the municipal helpline assistant. Which service is your complaint about, and where is the problem?"
	}

	if mockEmergencyPattern.MatchString(pending[len(pending)-1]) {
		return "This sounds like an emergency. Please call Fire 101, Police 100 or Ambulance 102 right away."
	}

	var category, description, location string
	for _, utterance := range pending {
		if category == "" {
			if c := mockCategory(utterance); c != "" {
				category, description = c, strings.TrimSpace(utterance)
			}
		}
		if location == "" {
			if match := mockLocationPattern.FindStringSubmatch(utterance); match != nil {
				location = strings.TrimSpace(match[1])
			}
		}
	}

	switch {
	case category == "" && location == "":
		return "I'm sorry, I didn't catch that. Could you describe the problem and where it is?"
	case location == "":
		return fmt.Sprintf("I understand this is about %s. Could you tell me the exact location?", category)
	case category == "":
		return fmt.Sprintf("Thank you. Which service is the problem at %s about? For example water supply, road issues or street lights.", location)
	}

	intent := entities.ComplaintIntent{Service: category, Description: description, Location: location}
	return fmt.Sprintf("Your complaint about %s at %s %s. Your complaint ID is %s. Is there anything else? %s",
		category, location, mockFiledMarker, entities.ComplaintIDPlaceholder, intent.Tag())
}

func mockCategory(utterance string) string {
	lower := strings.ToLower(utterance)
	for _, k := range mockKeywords {
		if strings.Contains(lower, k.keyword) {
			return k.category
		}
	}
	return ""
}
