package location

// LocationForm is the multipart field set shared by create and update.
// Latitude/longitude are pointers so an absent numeric field is
// reported as missing instead of silently defaulting to zero.
type LocationForm struct {
	Name        string   `form:"name" validate:"required"`
	Description string   `form:"description" validate:"required"`
	Movie       *string  `form:"movie"`
	Latitude    *float64 `form:"latitude" validate:"required"`
	Longitude   *float64 `form:"longitude" validate:"required"`
}
