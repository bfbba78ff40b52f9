package domain

import (
	"encoding/json"
	"fmt"
)

// elementBox is the part of the wire form shared by every kind.
type elementBox struct {
	ID       string      `json:"id,omitempty"`
	Type     ElementKind `json:"type"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Rotation float64     `json:"rotation"`
}

// MarshalJSON writes the flat form used by notebook files:
// {"type":"shape","x":..,"shape":"circle","fillColor":..}.
func (e Element) MarshalJSON() ([]byte, error) {
	box := elementBox{
		ID:       e.ID,
		Type:     e.Kind(),
		X:        e.X,
		Y:        e.Y,
		Width:    e.Width,
		Height:   e.Height,
		Rotation: e.Rotation,
	}
	switch p := e.Payload.(type) {
	case Text:
		return json.Marshal(struct {
			elementBox
			Text
		}{box, p})
	case Image:
		return json.Marshal(struct {
			elementBox
			Image
		}{box, p})
	case Shape:
		return json.Marshal(struct {
			elementBox
			Shape
		}{box, p})
	case Math:
		return json.Marshal(struct {
			elementBox
			Math
		}{box, p})
	default:
		return nil, fmt.Errorf("marshal element: missing payload")
	}
}

// UnmarshalJSON reads the flat form. Fields that are absent keep the
// defaults of the element's kind; a missing id is generated.
func (e *Element) UnmarshalJSON(data []byte) error {
	var head struct {
		Type ElementKind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	def, ok := DefaultElement(head.Type)
	if !ok {
		return fmt.Errorf("unknown element type %q", head.Type)
	}

	box := elementBox{
		ID:     def.ID,
		Type:   head.Type,
		X:      def.X,
		Y:      def.Y,
		Width:  def.Width,
		Height: def.Height,
	}
	if err := json.Unmarshal(data, &box); err != nil {
		return err
	}
	if box.ID == "" {
		box.ID = def.ID
	}

	var payload Payload
	switch p := def.Payload.(type) {
	case Text:
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		payload = p
	case Image:
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		payload = p
	case Shape:
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		if !p.Form.Valid() {
			return fmt.Errorf("unknown shape %q", p.Form)
		}
		payload = p
	case Math:
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		payload = p
	}

	*e = Element{
		ID:       box.ID,
		X:        box.X,
		Y:        box.Y,
		Width:    box.Width,
		Height:   box.Height,
		Rotation: box.Rotation,
		Payload:  payload,
	}
	return nil
}
