package framework

import (
	"errors"
	"fmt"
)

// ErrTooManyTraits is returned when MaxTraits or more trait names are requested. The limit
// counts the program name along with the trait names, so at most MaxTraits-1 can be given.
var ErrTooManyTraits = fmt.Errorf("too many traits specified (at most %d)", MaxTraits-1)

// UnknownTraitError is returned when a requested trait is not declared by the Subject.
type UnknownTraitError struct {
	Name string
}

func (e *UnknownTraitError) Error() string {
	return fmt.Sprintf("unknown trait: `%s`", e.Name)
}

// IsSelectionError reports whether err came from resolving the requested trait names.
func IsSelectionError(err error) bool {
	var unknown *UnknownTraitError
	return errors.Is(err, ErrTooManyTraits) || errors.As(err, &unknown)
}

// SelectTraits resolves trait names against the subject. With no names, every trait is
// selected. The result is always in declaration order, whatever order the names were given in.
func SelectTraits(subject *Subject, names []string) ([]*Trait, error) {
	if len(names) == 0 {
		selected := make([]*Trait, 0, len(subject.Traits))
		for i := range subject.Traits {
			selected = append(selected, &subject.Traits[i])
		}
		return selected, nil
	}
	if len(names) >= MaxTraits {
		return nil, ErrTooManyTraits
	}

	requested := make(map[string]bool, len(names))
	for _, name := range names {
		if subject.trait(name) == nil {
			return nil, &UnknownTraitError{Name: name}
		}
		requested[name] = true
	}
	selected := make([]*Trait, 0, len(requested))
	for i := range subject.Traits {
		if requested[subject.Traits[i].Name] {
			selected = append(selected, &subject.Traits[i])
		}
	}
	return selected, nil
}
