package domain

import (
	"fmt"
	"strings"
)

// DestinationName identifies one of the seeded travel destinations.
type DestinationName string

const (
	DestinationSeoul     DestinationName = "SEOUL"
	DestinationBusan     DestinationName = "BUSAN"
	DestinationJeju      DestinationName = "JEJU"
	DestinationGangneung DestinationName = "GANGNEUNG"
	DestinationGyeongju  DestinationName = "GYEONGJU"
	DestinationJeonju    DestinationName = "JEONJU"
	DestinationYeosu     DestinationName = "YEOSU"
	DestinationSokcho    DestinationName = "SOKCHO"
)

var destinationNames = []DestinationName{
	DestinationSeoul, DestinationBusan, DestinationJeju, DestinationGangneung,
	DestinationGyeongju, DestinationJeonju, DestinationYeosu, DestinationSokcho,
}

// ParseDestinationName validates a destination name, ignoring case.
func ParseDestinationName(s string) (DestinationName, error) {
	want := DestinationName(strings.ToUpper(strings.TrimSpace(s)))
	for _, n := range destinationNames {
		if n == want {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: unknown destination %q", ErrBadRequest, s)
}

// Destination is reference data: where a plan takes place.
type Destination struct {
	ID   int64
	Name DestinationName
}

// Category is reference data used to classify places (cafe, museum, ...).
type Category struct {
	ID   int64
	Name string
}
