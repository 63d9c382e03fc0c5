package domain

import "fmt"

type Status string

const (
	StatusNew       Status = "NEW"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCanceled  Status = "CANCELED"
)

func (s Status) String() string {
	return string(s)
}

// ParseStatus maps the wire representation to a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNew, StatusPaid, StatusShipped, StatusDelivered, StatusCanceled:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// transitions is the full legal state graph. Anything absent is illegal;
// DELIVERED and CANCELED are terminal.
var transitions = map[Status][]Status{
	StatusNew:       {StatusPaid, StatusCanceled},
	StatusPaid:      {StatusShipped, StatusCanceled},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {},
	StatusCanceled:  {},
}

func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is legal from s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}
