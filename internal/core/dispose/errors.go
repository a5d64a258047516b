package dispose

import "fmt"

// UnsupportedResourceError is returned for a value that is none of the
// disposable shapes.
type UnsupportedResourceError struct {
	Resource any
}

func (e UnsupportedResourceError) Error() string {
	return fmt.Sprintf("unsupported resource type %T (%v): want Destroy(), Unsubscribe(), func(), a collection or a holder", e.Resource, e.Resource)
}
