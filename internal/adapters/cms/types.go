package cms

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// NonSelected is the fixed Type given to entries copied by reconciliation.
const NonSelected = "Non-Selected"

// Payload is the body of one created weekly-contest record.
type Payload struct {
	AuthorName     string `json:"authorName"`
	StoryTitle     string `json:"storyTitle"`
	StoryContent   string `json:"storyContent"`
	Type           string `json:"Type"`
	AuthorEmail    string `json:"authorEmail"`
	AuthorCityName string `json:"authorCityName"`
	ThemeTitle     string `json:"themeTitle"`
	ThemePrompt    string `json:"themePrompt"`
	StoryGenre     string `json:"storyGenre"`
	WeekNumber     string `json:"weekNumber"`
}

// Record is the part of a stored weekly-contest record reconciliation reads.
type Record struct {
	ID          int
	AuthorEmail string
	StoryTitle  string
	WeekNumber  string
}

// FlexString decodes a JSON string, number or null into a string.
// Week numbers were historically written both as "week-2" and as 2.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		if i, err := n.Int64(); err == nil {
			*f = FlexString(strconv.FormatInt(i, 10))
			return nil
		}
		*f = FlexString(n.String())
		return nil
	}
}

type listResponse struct {
	Data []struct {
		ID         int `json:"id"`
		Attributes struct {
			AuthorEmail string     `json:"authorEmail"`
			StoryTitle  string     `json:"storyTitle"`
			WeekNumber  FlexString `json:"weekNumber"`
		} `json:"attributes"`
	} `json:"data"`
	Meta struct {
		Pagination struct {
			Start int `json:"start"`
			Limit int `json:"limit"`
			Total int `json:"total"`
		} `json:"pagination"`
	} `json:"meta"`
}

type createRequest struct {
	Data Payload `json:"data"`
}
