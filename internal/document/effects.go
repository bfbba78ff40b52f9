package document

import (
	"errors"

	"canvasnotes/internal/canvas"
)

// Apply carries out the document-level effects emitted by the interaction
// controller and returns the ones only the host can handle (commands,
// image requests, live ink segments). Errors from individual effects are
// joined; the remaining effects are still applied.
func (d *Document) Apply(effects []canvas.Effect) ([]canvas.Effect, error) {
	var (
		rest []canvas.Effect
		errs []error
	)
	for _, eff := range effects {
		switch e := eff.(type) {
		case canvas.AddElement:
			d.AddElement(e.Element)
		case canvas.UpdateElement:
			errs = append(errs, d.UpdateElement(e.Index, e.Patch))
		case canvas.DeleteElement:
			errs = append(errs, d.DeleteElement(e.Index))
		case canvas.Select:
			errs = append(errs, d.Select(e.Index))
		case canvas.CommitStroke:
			d.AppendInk(e.Stroke)
		case canvas.Invalidate:
			d.Invalidate()
		default:
			rest = append(rest, eff)
		}
	}
	return rest, errors.Join(errs...)
}

// Run is one controller turn: the event goes through canvas.Update against
// the current page and the resulting effects are applied.
func (d *Document) Run(s canvas.State, ev canvas.Event) (canvas.State, []canvas.Effect, error) {
	s.Selected = d.selected
	s, effects := canvas.Update(s, d.Elements(), ev)
	rest, err := d.Apply(effects)
	s.Selected = d.selected
	return s, rest, err
}
