package booking

import (
	"errors"
	"fmt"
)

var ErrRoomNotFound = errors.New("room not found")

const MsgSelectDate = "please select a valid date to continue"

// InputError collects user-facing validation messages per field. It is a
// notification, not a fault: nothing was mutated when it is returned.
type InputError struct {
	fields map[string][]string
}

func newInputError() *InputError {
	return &InputError{fields: make(map[string][]string)}
}

func IsInputError(err error) *InputError {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie
	}
	return nil
}

func (ie *InputError) add(field, msg string) {
	ie.fields[field] = append(ie.fields[field], msg)
}

func (ie *InputError) empty() bool { return len(ie.fields) == 0 }

func (ie *InputError) Fields() map[string][]string { return ie.fields }

func (ie *InputError) Error() string {
	return fmt.Sprintf("invalid input: %+v", ie.fields)
}
