package smtest

import (
	"errors"
	"fmt"
)

// Matcher errors.
var (
	ErrNoTrace            = errors.New("no trace recorded")
	ErrNoMatchersPassed   = errors.New("no matchers passed")
	ErrStateNotVisited    = errors.New("state was not visited")
	ErrTransitionNotTaken = errors.New("transition was not taken")
	ErrEffectNotEmitted   = errors.New("effect was not emitted")
	ErrEventHandled       = errors.New("event was handled")
)

// Matcher checks a recorded trace.
type Matcher[S ~string, C any] interface {
	Match(r *Recorder[S, C]) (bool, error)
	Description() string
}

// StateWasVisited matches when some transition entered the state.
func StateWasVisited[S ~string, C any](state S) Matcher[S, C] {
	return &stateVisitedMatcher[S, C]{state: state}
}

type stateVisitedMatcher[S ~string, C any] struct {
	state S
}

func (m *stateVisitedMatcher[S, C]) Match(r *Recorder[S, C]) (bool, error) {
	for _, entry := range r.trace {
		if entry.Transitioned && entry.To == m.state {
			return true, nil
		}
	}

	return false, fmt.Errorf("%w: '%s'", ErrStateNotVisited, m.state)
}

func (m *stateVisitedMatcher[S, C]) Description() string {
	return fmt.Sprintf("state '%s' should be visited", m.state)
}

// TransitionWasTaken matches when a Send moved the machine from one state to another.
func TransitionWasTaken[S ~string, C any](from, to S) Matcher[S, C] {
	return &transitionTakenMatcher[S, C]{from: from, to: to}
}

type transitionTakenMatcher[S ~string, C any] struct {
	from S
	to   S
}

func (m *transitionTakenMatcher[S, C]) Match(r *Recorder[S, C]) (bool, error) {
	for _, entry := range r.trace {
		if entry.Transitioned && entry.From == m.from && entry.To == m.to {
			return true, nil
		}
	}

	return false, fmt.Errorf("%w: from '%s' to '%s'", ErrTransitionNotTaken, m.from, m.to)
}

func (m *transitionTakenMatcher[S, C]) Description() string {
	return fmt.Sprintf("transition from '%s' to '%s' should be taken", m.from, m.to)
}

// EffectEmitted matches when any recorded Send produced an effect of the kind.
func EffectEmitted[S ~string, C any](kind string) Matcher[S, C] {
	return &effectMatcher[S, C]{kind: kind}
}

type effectMatcher[S ~string, C any] struct {
	kind string
}

func (m *effectMatcher[S, C]) Match(r *Recorder[S, C]) (bool, error) {
	for _, entry := range r.trace {
		for _, eff := range entry.Effects {
			if eff.Kind() == m.kind {
				return true, nil
			}
		}
	}

	return false, fmt.Errorf("%w: %s", ErrEffectNotEmitted, m.kind)
}

func (m *effectMatcher[S, C]) Description() string {
	return fmt.Sprintf("effect '%s' should be emitted", m.kind)
}

// LastIgnored matches when the most recent event changed nothing.
func LastIgnored[S ~string, C any]() Matcher[S, C] {
	return &lastIgnoredMatcher[S, C]{}
}

type lastIgnoredMatcher[S ~string, C any] struct{}

func (m *lastIgnoredMatcher[S, C]) Match(r *Recorder[S, C]) (bool, error) {
	if len(r.trace) == 0 {
		return false, ErrNoTrace
	}

	last := r.trace[len(r.trace)-1]
	if last.Changed {
		return false, fmt.Errorf("%w: %s", ErrEventHandled, last)
	}

	return true, nil
}

func (m *lastIgnoredMatcher[S, C]) Description() string {
	return "last event should be ignored"
}

// All creates a matcher that requires all sub-matchers to pass.
func All[S ~string, C any](matchers ...Matcher[S, C]) Matcher[S, C] {
	return &allMatcher[S, C]{matchers: matchers}
}

type allMatcher[S ~string, C any] struct {
	matchers []Matcher[S, C]
}

func (m *allMatcher[S, C]) Match(r *Recorder[S, C]) (bool, error) {
	for _, matcher := range m.matchers {
		matched, err := matcher.Match(r)
		if !matched || err != nil {
			return false, err
		}
	}

	return true, nil
}

func (m *allMatcher[S, C]) Description() string {
	return "all matchers should pass"
}

// Any creates a matcher that requires at least one sub-matcher to pass.
func Any[S ~string, C any](matchers ...Matcher[S, C]) Matcher[S, C] {
	return &anyMatcher[S, C]{matchers: matchers}
}

type anyMatcher[S ~string, C any] struct {
	matchers []Matcher[S, C]
}

func (m *anyMatcher[S, C]) Match(r *Recorder[S, C]) (bool, error) {
	for _, matcher := range m.matchers {
		matched, err := matcher.Match(r)
		if matched && err == nil {
			return true, nil
		}
	}

	return false, ErrNoMatchersPassed
}

func (m *anyMatcher[S, C]) Description() string {
	return "at least one matcher should pass"
}
