package domain

// Direction of travel along a sub-service route.
type Direction string

const (
	DirectionEastbound  Direction = "eastbound"
	DirectionWestbound  Direction = "westbound"
	DirectionNorthbound Direction = "northbound"
	DirectionSouthbound Direction = "southbound"
)

// HostSegment is the stretch of a route owned by one host railroad.
type HostSegment struct {
	Railroad string  `json:"railroad" validate:"required"`
	Miles    float64 `json:"miles" validate:"gte=0"`
}

// SubServiceRoute describes a named sub-service: its host railroads and the
// canonical station order for each direction it runs.
type SubServiceRoute struct {
	SubService   string                 `json:"sub service" validate:"required"`
	Hosts        []HostSegment          `json:"hosts" validate:"dive"`
	StationCodes []string               `json:"station codes,omitempty"`
	StationOrder map[Direction][]string `json:"station order,omitempty"`
}

// RouteMiles sums host mileage and truncates to whole miles.
func (r SubServiceRoute) RouteMiles() int {
	var total float64
	for _, h := range r.Hosts {
		total += h.Miles
	}
	return int(total)
}

// Order returns the declared station order for a direction.
func (r SubServiceRoute) Order(d Direction) ([]string, bool) {
	order, ok := r.StationOrder[d]
	return order, ok
}
