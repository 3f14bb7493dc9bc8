package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrNothingToSelect is returned by selection prompts given no items.
var ErrNothingToSelect = errors.New("nothing to select from")

// Confirm prompts the user for yes/no confirmation.
func Confirm(prompt string, defaultYes bool) (bool, error) {
	label := prompt
	if defaultYes {
		label += " [Y/n]"
	} else {
		label += " [y/N]"
	}

	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Default:   "",
	}

	if defaultYes {
		p.Default = "y"
	}

	result, err := p.Run()
	if err != nil {
		if err == promptui.ErrAbort {
			return false, nil
		}
		if err == promptui.ErrInterrupt {
			return false, err
		}
		return defaultYes, nil // Return default on error
	}

	result = strings.ToLower(strings.TrimSpace(result))
	if result == "" {
		return defaultYes, nil
	}

	return result == "y" || result == "yes", nil
}

// SelectOption is one entry of a Select prompt.
type SelectOption struct {
	Label  string
	Detail string
}

// Select prompts the user to pick one option and returns its index.
func Select(prompt string, options []SelectOption) (int, error) {
	if len(options) == 0 {
		return -1, ErrNothingToSelect
	}

	if len(options) == 1 {
		return 0, nil
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ .Label | green }} {{ .Detail | faint }}",
		Inactive: "  {{ .Label }} {{ .Detail | faint }}",
		Selected: "✓ {{ .Label | green }}",
	}
	if !UseUnicode {
		templates.Active = "> {{ .Label | green }} {{ .Detail | faint }}"
		templates.Selected = "* {{ .Label | green }}"
	}

	searcher := func(input string, index int) bool {
		return strings.Contains(strings.ToLower(options[index].Label), strings.ToLower(input))
	}

	p := promptui.Select{
		Label:     prompt,
		Items:     options,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
	}

	index, _, err := p.Run()
	if err != nil {
		return -1, fmt.Errorf("selection cancelled: %w", err)
	}

	return index, nil
}
