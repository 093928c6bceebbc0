// Package cli holds the terminal helpers used by the demo binary: an interactive
// picker and the box frame drawn around its screens.
package cli

import (
	"errors"

	"github.com/amp-labs/amp-a11y/typeahead"
	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user leaves the picker with Ctrl+C or Ctrl+D.
var ErrAborted = errors.New("selection aborted")

const pickerSize = 10

// Select asks the user to pick one of choices. Typing "/" filters the list with the
// same case-insensitive prefix match the widgets use for typeahead.
func Select(label string, choices ...string) (string, error) {
	if len(choices) == 0 {
		return "", nil
	}

	sel := &promptui.Select{
		Label: label,
		Items: choices,
		Size:  min(len(choices), pickerSize),
		Searcher: func(input string, index int) bool {
			if input == "" {
				return true
			}

			return typeahead.HasPrefix(choices[index], input)
		},
	}

	_, value, err := sel.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return "", ErrAborted
		}

		return "", err
	}

	return value, nil
}
