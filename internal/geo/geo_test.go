package geo

import (
	"math"
	"testing"
)

func TestDegreesToRadiansFixedPoints(t *testing.T) {
	cases := []struct {
		degrees float64
		want    float64
	}{
		{180, math.Pi},
		{360, 2 * math.Pi},
		{-180, -math.Pi},
		{0, 0},
	}

	for _, tc := range cases {
		got := DegreesToRadians(tc.degrees)
		if math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("DegreesToRadians(%v) = %v, want %v", tc.degrees, got, tc.want)
		}
	}
}

func TestDegreesToRadiansIsLinear(t *testing.T) {
	pairs := [][2]float64{{10, 20}, {-45, 90}, {0.5, 0.25}, {123.4, -56.7}}

	for _, p := range pairs {
		sum := DegreesToRadians(p[0] + p[1])
		parts := DegreesToRadians(p[0]) + DegreesToRadians(p[1])
		if math.Abs(sum-parts) > 1e-12 {
			t.Fatalf("f(%v+%v) = %v, f(a)+f(b) = %v", p[0], p[1], sum, parts)
		}
	}
}

func TestDistanceKmZeroForSamePoint(t *testing.T) {
	points := []Position{
		{0, 0},
		{40.7128, -74.0060},
		{-33.8688, 151.2093},
		{89.9, 179.9},
	}

	for _, p := range points {
		if d := DistanceKm(p.Latitude, p.Longitude, p.Latitude, p.Longitude); d != 0 {
			t.Fatalf("distance from %+v to itself = %v, want 0", p, d)
		}
	}
}

func TestDistanceKmIsSymmetric(t *testing.T) {
	d1 := DistanceKm(40.7128, -74.0060, 34.0522, -118.2437)
	d2 := DistanceKm(34.0522, -118.2437, 40.7128, -74.0060)
	if math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("distance not symmetric: %v vs %v", d1, d2)
	}
}

func TestDistanceKmKnownCities(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		{"new york to los angeles", 40.7128, -74.0060, 34.0522, -118.2437, 3935},
		{"quito to nairobi", -0.1807, -78.4678, -1.286389, 36.817223, 12817},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DistanceKm(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			if math.Abs(got-tc.want) > 10 {
				t.Fatalf("distance = %v, want within 10km of %v", got, tc.want)
			}
		})
	}
}
