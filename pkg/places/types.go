package places

// Status values returned by the directory API. ZERO_RESULTS is treated as
// success with an empty result list; every other non-OK status is an error.
const (
	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geometry holds a place's location.
type Geometry struct {
	Location LatLng `json:"location"`
}

// OpeningHours carries the open-now flag on search results and the weekday
// text lines on detail lookups.
type OpeningHours struct {
	OpenNow     bool     `json:"open_now"`
	WeekdayText []string `json:"weekday_text,omitempty"`
}

// Place is a raw search result from the directory provider.
type Place struct {
	PlaceID      string        `json:"place_id"`
	Name         string        `json:"name"`
	Vicinity     string        `json:"vicinity"`
	Geometry     Geometry      `json:"geometry"`
	Types        []string      `json:"types"`
	Rating       float64       `json:"rating,omitempty"`
	PriceLevel   int           `json:"price_level,omitempty"`
	OpeningHours *OpeningHours `json:"opening_hours,omitempty"`
}

// PhotoRef references a provider-hosted photo.
type PhotoRef struct {
	PhotoReference   string   `json:"photo_reference"`
	Height           int      `json:"height"`
	Width            int      `json:"width"`
	HTMLAttributions []string `json:"html_attributions"`
}

// PlaceDetail supplements Place with the full formatted address, phone,
// structured opening hours, and photo references.
type PlaceDetail struct {
	PlaceID          string        `json:"place_id"`
	Name             string        `json:"name"`
	FormattedAddress string        `json:"formatted_address"`
	Geometry         Geometry      `json:"geometry"`
	PhoneNumber      string        `json:"formatted_phone_number,omitempty"`
	OpeningHours     *OpeningHours `json:"opening_hours,omitempty"`
	Website          string        `json:"website,omitempty"`
	Rating           float64       `json:"rating,omitempty"`
	UserRatingsTotal int           `json:"user_ratings_total,omitempty"`
	Photos           []PhotoRef    `json:"photos,omitempty"`
}

// NearbyRequest parameterizes a nearby search.
type NearbyRequest struct {
	Lat    float64
	Lng    float64
	Radius int // meters
	Type   string
}

// TextSearchRequest parameterizes a free-text search. Lat/Lng/Radius bias
// the search toward a location when non-zero.
type TextSearchRequest struct {
	Query  string
	Lat    float64
	Lng    float64
	Radius int // meters
}

// searchResponse is the wire envelope for nearby and text search.
type searchResponse struct {
	Status       string  `json:"status"`
	Results      []Place `json:"results"`
	ErrorMessage string  `json:"error_message,omitempty"`
}

// detailResponse is the wire envelope for detail lookups.
type detailResponse struct {
	Status       string       `json:"status"`
	Result       *PlaceDetail `json:"result"`
	ErrorMessage string       `json:"error_message,omitempty"`
}
