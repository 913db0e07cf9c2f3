package models

import (
	"encoding/json"
	"fmt"
)

// Patch is a partial task update. Nil fields are left untouched; a non-nil
// Date pointing at Someday moves the task to the undated pool.
type Patch struct {
	Title     *string
	Completed *bool
	Date      *Date
	Category  *Category
	IsLabel   *bool
	Color     *Color
	Notes     *string
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil && p.Date == nil && p.Category == nil &&
		p.IsLabel == nil && p.Color == nil && p.Notes == nil
}

// Apply merges the patch into a copy of t.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.IsLabel != nil {
		t.IsLabel = *p.IsLabel
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	return t
}

func (p Patch) MarshalJSON() ([]byte, error) {
	fields := make(map[string]interface{})
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Completed != nil {
		fields["completed"] = *p.Completed
	}
	if p.Date != nil {
		fields["date"] = *p.Date
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	if p.IsLabel != nil {
		fields["isLabel"] = *p.IsLabel
	}
	if p.Color != nil {
		fields["color"] = *p.Color
	}
	if p.Notes != nil {
		fields["notes"] = *p.Notes
	}
	return json.Marshal(fields)
}

// UnmarshalJSON distinguishes an absent "date" from an explicit null and
// rejects keys that are not part of the patchable task model.
func (p *Patch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Patch{}
	for key, val := range raw {
		var err error
		switch key {
		case "title":
			p.Title = new(string)
			err = json.Unmarshal(val, p.Title)
		case "completed":
			p.Completed = new(bool)
			err = json.Unmarshal(val, p.Completed)
		case "date":
			p.Date = new(Date)
			err = json.Unmarshal(val, p.Date)
		case "category":
			p.Category = new(Category)
			err = json.Unmarshal(val, p.Category)
		case "isLabel":
			p.IsLabel = new(bool)
			err = json.Unmarshal(val, p.IsLabel)
		case "color":
			p.Color = new(Color)
			err = json.Unmarshal(val, p.Color)
		case "notes":
			p.Notes = new(string)
			err = json.Unmarshal(val, p.Notes)
		default:
			return fmt.Errorf("unknown task field %q", key)
		}
		if err != nil {
			return fmt.Errorf("invalid value for %q: %w", key, err)
		}
	}
	return nil
}
