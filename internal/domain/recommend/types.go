package recommend

import (
	"strconv"
	"strings"
)

type NeedType string

const (
	NeedContents NeedType = "contents"
	NeedLocation NeedType = "location"
	NeedCreator  NeedType = "creator"
)

// AllNeeds is the fixed order used when reporting usage for every need.
var AllNeeds = []NeedType{NeedContents, NeedLocation, NeedCreator}

func ParseNeed(s string) NeedType {
	return NeedType(strings.ToLower(strings.TrimSpace(s)))
}

func (n NeedType) Known() bool {
	switch n {
	case NeedContents, NeedLocation, NeedCreator:
		return true
	default:
		return false
	}
}

// UserContext is assembled per request and discarded afterwards.
type UserContext struct {
	UserID    int64
	Name      string
	Age       *int
	Gender    *string
	Country   string
	Needs     NeedType
	Category  string
	Latitude  float64
	Longitude float64
}

type ContentItem struct {
	ID          int64
	Category    string
	Title       string
	Description string
	Thumbnail   string
	CreatorID   int64
}

func (c ContentItem) Key() string { return strconv.FormatInt(c.ID, 10) }

type LocationItem struct {
	ID          int64
	PlaceName   string
	Address     string
	Latitude    float64
	Longitude   float64
	GoogleMapID string
	ContentsID  int64
	Category    string
}

type CreatorItem struct {
	ID           int64
	Name         string
	Categories   []string
	Country      string
	Youtube      string
	Introduction string
}

func (c CreatorItem) Key() string { return strconv.FormatInt(c.ID, 10) }

// Pools are the candidate snapshots loaded for one request.
type Pools struct {
	Contents  []ContentItem
	Locations []LocationItem
	Creators  []CreatorItem
}

// Bias holds neighbours' preferred ids in rank order. Duplicates are kept.
type Bias struct {
	ContentIDs []string
	CreatorIDs []string
}

func (b Bias) Empty() bool {
	return len(b.ContentIDs) == 0 && len(b.CreatorIDs) == 0
}
