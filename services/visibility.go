package services

import (
	"encoding/json"

	"citymap-server/models"
)

// Visibility holds one flag per known category. The category set is fixed
// at construction; visibility gates rendering only and never touches layer
// data.
type Visibility struct {
	flags map[models.Category]bool
}

func NewVisibility() Visibility {
	flags := make(map[models.Category]bool, len(models.Categories))
	for _, c := range models.Categories {
		flags[c] = true
	}
	return Visibility{flags: flags}
}

func (v Visibility) IsVisible(c models.Category) bool {
	return v.flags[c]
}

// Toggle flips the flag for c and returns the new value. Categories outside
// the fixed set are ignored.
func (v Visibility) Toggle(c models.Category) bool {
	current, ok := v.flags[c]
	if !ok {
		return false
	}
	v.flags[c] = !current
	return !current
}

// Flags returns a copy of the current flags.
func (v Visibility) Flags() map[models.Category]bool {
	out := make(map[models.Category]bool, len(v.flags))
	for c, on := range v.flags {
		out[c] = on
	}
	return out
}

func (v Visibility) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.flags)
}

// UnmarshalJSON starts from the defaults and only applies known categories.
func (v *Visibility) UnmarshalJSON(data []byte) error {
	var stored map[string]bool
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}
	*v = NewVisibility()
	for k, on := range stored {
		c := models.Category(k)
		if _, ok := v.flags[c]; ok {
			v.flags[c] = on
		}
	}
	return nil
}
