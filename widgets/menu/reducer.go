// Package menu implements a menu button: a trigger that opens a list of actions
// or links.
//
// Unlike the other widgets the menu keeps a single reducer state instead of a chart.
// The reducer runs inside a two-phase machine (collapsed, expanded) so menus get the
// same logging, tracing and metrics as every other widget.
package menu

import (
	"sync"

	"github.com/amp-labs/amp-a11y/statemachine"
)

// Phase mirrors State.IsExpanded as a machine state.
type Phase string

const (
	Collapsed Phase = "collapsed"
	Expanded  Phase = "expanded"
)

// State is everything the menu remembers between events.
type State struct {
	TriggerID  string
	IsExpanded bool
	// TypeaheadQuery is the lowercased text typed while the menu is open.
	TypeaheadQuery string
	// SelectionIndex is the highlighted item, -1 for none.
	SelectionIndex int
}

// Action types.
const (
	EventClearSelectionIndex statemachine.EventType = "CLEAR_SELECTION_INDEX"
	EventClickMenuItem       statemachine.EventType = "CLICK_MENU_ITEM"
	EventCloseMenu           statemachine.EventType = "CLOSE_MENU"
	EventOpenMenuAtFirstItem statemachine.EventType = "OPEN_MENU_AT_FIRST_ITEM"
	EventOpenMenuAtIndex     statemachine.EventType = "OPEN_MENU_AT_INDEX"
	EventOpenMenuCleared     statemachine.EventType = "OPEN_MENU_CLEARED"
	EventSearchForItem       statemachine.EventType = "SEARCH_FOR_ITEM"
	EventSelectItemAtIndex   statemachine.EventType = "SELECT_ITEM_AT_INDEX"
	EventSetButtonID         statemachine.EventType = "SET_BUTTON_ID"
)

type (
	ClearSelectionIndex struct{}
	ClickMenuItem       struct{}
	CloseMenu           struct{}
	OpenMenuAtFirstItem struct{}
	OpenMenuAtIndex     struct{ Index int }
	OpenMenuCleared     struct{}
	SearchForItem       struct{ Query string }
	SetButtonID         struct{ ID string }
)

// SelectItemAtIndex highlights an item. Max, when set, clamps the index.
type SelectItemAtIndex struct {
	Index int
	Max   *int
}

func (ClearSelectionIndex) Type() statemachine.EventType { return EventClearSelectionIndex }
func (ClickMenuItem) Type() statemachine.EventType       { return EventClickMenuItem }
func (CloseMenu) Type() statemachine.EventType           { return EventCloseMenu }
func (OpenMenuAtFirstItem) Type() statemachine.EventType { return EventOpenMenuAtFirstItem }
func (OpenMenuAtIndex) Type() statemachine.EventType     { return EventOpenMenuAtIndex }
func (OpenMenuCleared) Type() statemachine.EventType     { return EventOpenMenuCleared }
func (SearchForItem) Type() statemachine.EventType       { return EventSearchForItem }
func (SelectItemAtIndex) Type() statemachine.EventType   { return EventSelectItemAtIndex }
func (SetButtonID) Type() statemachine.EventType         { return EventSetButtonID }

// Reduce computes the state that follows an action.
func Reduce(s State, ev statemachine.Event) State {
	switch a := ev.(type) {
	case ClickMenuItem, CloseMenu:
		s.IsExpanded = false
		s.SelectionIndex = -1
	case OpenMenuAtFirstItem:
		s.IsExpanded = true
		s.SelectionIndex = 0
	case OpenMenuAtIndex:
		s.IsExpanded = true
		s.SelectionIndex = a.Index
	case OpenMenuCleared:
		s.IsExpanded = true
		s.SelectionIndex = -1
	case SelectItemAtIndex:
		if a.Index < 0 || a.Index == s.SelectionIndex {
			return s
		}

		s.SelectionIndex = a.Index
		if a.Max != nil {
			s.SelectionIndex = max(min(a.Index, *a.Max), 0)
		}
	case ClearSelectionIndex:
		s.SelectionIndex = -1
	case SetButtonID:
		s.TriggerID = a.ID
	case SearchForItem:
		s.TypeaheadQuery = a.Query
	}

	return s
}

var definition = sync.OnceValue(func() *statemachine.Definition[Phase, State] {
	reduce := statemachine.Assign("reduce", Reduce)

	to := func(target Phase) statemachine.Candidate[Phase, State] {
		return statemachine.Candidate[Phase, State]{Target: target, Actions: []statemachine.Action[State]{reduce}}
	}

	phases := []Phase{Collapsed, Expanded}

	return statemachine.NewBuilder("menu", Collapsed, State{SelectionIndex: -1}).
		OnAll(phases, EventClickMenuItem, to(Collapsed)).
		OnAll(phases, EventCloseMenu, to(Collapsed)).
		OnAll(phases, EventOpenMenuAtFirstItem, to(Expanded)).
		OnAll(phases, EventOpenMenuAtIndex, to(Expanded)).
		OnAll(phases, EventOpenMenuCleared, to(Expanded)).
		OnAll(phases, EventSelectItemAtIndex, to("")).
		OnAll(phases, EventClearSelectionIndex, to("")).
		OnAll(phases, EventSetButtonID, to("")).
		OnAll(phases, EventSearchForItem, to("")).
		MustBuild()
})

// Definition is the menu machine.
func Definition() *statemachine.Definition[Phase, State] {
	return definition()
}
