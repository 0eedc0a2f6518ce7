package scope

import "fmt"

// DuplicateNameError reports a name declared twice in one effective scope.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("identifier %q is already declared", e.Name)
}

// UnresolvedNameError reports a reference no enclosing scope declares.
type UnresolvedNameError struct {
	Name string
}

func (e *UnresolvedNameError) Error() string {
	return fmt.Sprintf("cannot resolve identifier %q", e.Name)
}
