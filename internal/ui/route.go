package ui

// Route is the top-level screen the app is showing.
type Route int

const (
	RouteStatus Route = iota
	RouteCharacters
	RouteScenes
)

// Routes lists every route in tab order.
var Routes = []Route{RouteStatus, RouteCharacters, RouteScenes}

func (r Route) String() string {
	switch r {
	case RouteStatus:
		return "Status"
	case RouteCharacters:
		return "Characters"
	case RouteScenes:
		return "Scenes"
	default:
		return "Unknown"
	}
}

// Gated reports whether the route needs every dependency installed.
func (r Route) Gated() bool {
	return r == RouteCharacters || r == RouteScenes
}

// Key is the digit that jumps to the route.
func (r Route) Key() string {
	switch r {
	case RouteStatus:
		return "1"
	case RouteCharacters:
		return "2"
	case RouteScenes:
		return "3"
	}
	return ""
}
