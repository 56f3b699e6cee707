package recommend

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
)

type Justification struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// Reason is either a structured justification or a plain message.
type Reason struct {
	Justification *Justification
	Text          string
}

func JustifiedReason(j Justification) Reason { return Reason{Justification: &j} }

func TextReason(s string) Reason { return Reason{Text: s} }

func (r Reason) MarshalJSON() ([]byte, error) {
	if r.Justification != nil {
		return json.Marshal(r.Justification)
	}
	return json.Marshal(r.Text)
}

func (r *Reason) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = Reason{}
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = Reason{Text: s}
		return nil
	case '{':
		var j Justification
		if err := json.Unmarshal(b, &j); err != nil {
			return err
		}
		*r = Reason{Justification: &j}
		return nil
	default:
		return errors.New("reason: expected string or object")
	}
}

type LocationPick struct {
	LocationID  int64   `json:"locationId"`
	PlaceName   string  `json:"placeName"`
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	GoogleMapID string  `json:"googleMapId"`
	DistanceKm  float64 `json:"distanceKm"`
}

type ContentPick struct {
	ContentsID int64         `json:"contentsId"`
	Title      string        `json:"title"`
	Thumbnail  string        `json:"thumbnail"`
	Location   *LocationPick `json:"location"`
}

type CreatorPick struct {
	CreatorID    int64  `json:"creatorId"`
	Name         string `json:"name"`
	Introduction string `json:"introduction"`
	Youtube      string `json:"youtube"`
}

// Result is the outcome of one recommendation request. At most one of the
// pick fields is set, matching Needs.
type Result struct {
	UserID   int64
	Needs    NeedType
	Category string
	Contents *ContentPick
	Location *LocationPick
	Creator  *CreatorPick
	Reason   Reason
}

// Succeeded reports whether the pick for the requested need is present.
func (r Result) Succeeded() bool {
	switch r.Needs {
	case NeedContents:
		return r.Contents != nil
	case NeedLocation:
		return r.Location != nil
	case NeedCreator:
		return r.Creator != nil
	default:
		return false
	}
}

// History is an append-only record of a successful recommendation.
type History struct {
	ID         int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID     int64          `gorm:"column:user_id;index;not null" json:"userId"`
	Needs      string         `gorm:"column:needs;not null" json:"needs"`
	Category   string         `gorm:"column:category" json:"category"`
	ContentsID *int64         `gorm:"column:contents_id" json:"contentsId"`
	CreatorID  *int64         `gorm:"column:creator_id" json:"creatorId"`
	Reason     datatypes.JSON `gorm:"column:reason" json:"reason"`
	CreatedAt  time.Time      `gorm:"column:created_at;not null" json:"createdAt"`
}

func (History) TableName() string { return "recommendation_history" }

// NewHistory builds the history row for a successful result.
func NewHistory(res Result, now time.Time) (*History, error) {
	reason, err := json.Marshal(res.Reason)
	if err != nil {
		return nil, err
	}
	h := &History{
		UserID:    res.UserID,
		Needs:     string(res.Needs),
		Category:  res.Category,
		Reason:    datatypes.JSON(reason),
		CreatedAt: now.UTC(),
	}
	if res.Contents != nil {
		id := res.Contents.ContentsID
		h.ContentsID = &id
	}
	if res.Creator != nil {
		id := res.Creator.CreatorID
		h.CreatorID = &id
	}
	return h, nil
}
