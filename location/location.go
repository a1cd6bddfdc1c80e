package location

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnavailable      = errors.New("location unavailable")
	ErrPermissionDenied = errors.New("location permission not granted")
)

// Provider returns the current position of the device.
type Provider interface {
	Current(ctx context.Context) (Coordinates, error)
}

type Coordinates struct {
	Lat float64
	Lon float64
}

// String formats c as "<lat>,<lon>".
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

func ParseCoordinates(s string) (Coordinates, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinates{}, fmt.Errorf("coordinates must be formatted as <lat>,<lon>, got %q", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid latitude %q: %v", parts[0], err)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid longitude %q: %v", parts[1], err)
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Coordinates{}, fmt.Errorf("coordinates %q out of range", s)
	}

	return Coordinates{Lat: lat, Lon: lon}, nil
}

// Static is a Provider that always reports the same position.
type Static struct {
	coordinates *Coordinates
	err         error
}

func NewStatic(coordinates Coordinates) *Static {
	return &Static{coordinates: &coordinates}
}

// NewStaticFromString parses s; an empty s yields a provider that reports ErrUnavailable.
func NewStaticFromString(s string) (*Static, error) {
	if strings.TrimSpace(s) == "" {
		return &Static{}, nil
	}

	coordinates, err := ParseCoordinates(s)
	if err != nil {
		return nil, err
	}

	return NewStatic(coordinates), nil
}

// Denied returns a provider that always fails with ErrPermissionDenied.
func Denied() *Static {
	return &Static{err: ErrPermissionDenied}
}

func (s *Static) Current(ctx context.Context) (Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}

	if s.err != nil {
		return Coordinates{}, s.err
	}

	if s.coordinates == nil {
		return Coordinates{}, ErrUnavailable
	}

	return *s.coordinates, nil
}
