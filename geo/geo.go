// Package geo contributes the "place" and "address" document types. It
// registers itself with the codec module registry under the name "geo".
package geo

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/c360studio/semactivity/activity"
	"github.com/c360studio/semactivity/codec"
	"github.com/c360studio/semactivity/document"
	"github.com/c360studio/semactivity/schema"
)

// Module name and type tags.
const (
	ModuleName = "geo"
	TagPlace   = "place"
	TagAddress = "address"
)

// Place and address properties.
const (
	PropPosition      = "position"
	PropAddress       = "address"
	PropFormatted     = "formatted"
	PropStreetAddress = "streetAddress"
	PropLocality      = "locality"
	PropRegion        = "region"
	PropPostalCode    = "postalCode"
	PropCountry       = "country"
)

// ErrInvalidPosition is returned for a position that is not ISO 6709.
var ErrInvalidPosition = errors.New("invalid ISO 6709 position")

// iso6709 matches decimal-degree positions such as +27.5916+086.5640+8850/.
var iso6709 = regexp.MustCompile(`^([+-]\d{2}(?:\.\d+)?)([+-]\d{3}(?:\.\d+)?)([+-]\d+(?:\.\d+)?)?/?$`)

// Place is a named location.
type Place struct {
	*document.Document
}

// PlaceFactory builds *Place values for the "place" model.
var PlaceFactory = schema.NewFactory(TagPlace, NewPlaceFrom)

// NewPlaceFrom wraps a document as a Place, validating its position.
func NewPlaceFrom(d *document.Document) (*Place, error) {
	if s, ok := d.String(PropPosition); ok {
		if _, _, _, err := ParsePosition(s); err != nil {
			return nil, err
		}
	}
	return &Place{Document: d}, nil
}

// Coordinates returns the latitude and longitude of the position.
func (p *Place) Coordinates() (lat, lon float64, ok bool) {
	s, ok := p.String(PropPosition)
	if !ok {
		return 0, 0, false
	}
	lat, lon, _, err := ParsePosition(s)
	return lat, lon, err == nil
}

// Address returns the embedded address document, or nil.
func (p *Place) Address() *document.Document {
	return p.Embedded(PropAddress)
}

// ParsePosition parses a decimal-degree ISO 6709 position. alt is zero when
// the position has no altitude.
func ParsePosition(s string) (lat, lon, alt float64, err error) {
	m := iso6709.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	lat, _ = strconv.ParseFloat(m[1], 64)
	lon, _ = strconv.ParseFloat(m[2], 64)
	if m[3] != "" {
		alt, _ = strconv.ParseFloat(m[3], 64)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, 0, fmt.Errorf("%w: %q out of range", ErrInvalidPosition, s)
	}
	return lat, lon, alt, nil
}

// FormatPosition renders latitude and longitude as ISO 6709.
func FormatPosition(lat, lon float64) string {
	return fmt.Sprintf("%+08.4f%+09.4f/", lat, lon)
}

// PlaceModel extends object with a position and a postal address.
func PlaceModel() *schema.Model {
	return schema.NewModel(TagPlace).
		Parent(activity.TagObject).
		Property(schema.KindString, PropPosition).
		Document(TagAddress, PropAddress).
		Factory(PlaceFactory).
		Build()
}

// AddressModel describes a postal address.
func AddressModel() *schema.Model {
	return schema.NewModel(TagAddress).
		Property(schema.KindString, PropFormatted, PropStreetAddress, PropLocality,
			PropRegion, PropPostalCode, PropCountry).
		Build()
}

// Module composes the geo types into a codec.
type Module struct{}

// Name implements codec.Module.
func (Module) Name() string {
	return ModuleName
}

// Register implements codec.Module.
func (Module) Register(r *codec.Registrar) error {
	r.Model(PlaceModel(), AddressModel())
	return nil
}

func init() {
	if err := codec.RegisterModule(Module{}); err != nil {
		panic("failed to register geo module: " + err.Error())
	}
}
