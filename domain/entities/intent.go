package entities

import (
	"encoding/json"
	"strings"
)

// The conversational backend files a complaint by appending a tag of the form
//
//	[[COMPLAINT {"service":"water supply","description":"...","location":"..."}]]
//
// to its reply. The tag is stripped before the reply is spoken, and any
// ComplaintIDPlaceholder in the spoken text is replaced by the assigned ID.
const (
	ComplaintTagOpen       = "[[COMPLAINT"
	ComplaintTagClose      = "]]"
	ComplaintIDPlaceholder = "{complaint_id}"
)

// ComplaintIntent is a complaint the backend asked to file
type ComplaintIntent struct {
	Service     string `json:"service"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// Complete reports whether the intent carries enough to file it. Location
// may be empty when the citizen could not give one.
func (i ComplaintIntent) Complete() bool {
	return strings.TrimSpace(i.Service) != "" && strings.TrimSpace(i.Description) != ""
}

// Tag renders the intent in the reply-tag format
func (i ComplaintIntent) Tag() string {
	// Marshal cannot fail for a struct of strings
	payload, _ := json.Marshal(i)
	return ComplaintTagOpen + " " + string(payload) + ComplaintTagClose
}
