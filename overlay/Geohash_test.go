package overlay

import "testing"

func TestDecodeGeohashCenterApproximatesKnownLocation(t *testing.T) {
	// "9q8yyk" covers part of San Francisco, CA (~37.75, -122.43).
	lat, lon := DecodeGeohashCenter("9q8yyk")

	if lat < 37.0 || lat > 38.5 {
		t.Fatalf("expected latitude near San Francisco, got %f", lat)
	}
	if lon < -123.0 || lon > -121.5 {
		t.Fatalf("expected longitude near San Francisco, got %f", lon)
	}
}

func TestDecodeGeohashCenterIgnoresCase(t *testing.T) {
	lat1, lon1 := DecodeGeohashCenter("9q8yyk")
	lat2, lon2 := DecodeGeohashCenter("9Q8YYK")

	if lat1 != lat2 || lon1 != lon2 {
		t.Fatalf("expected case-insensitive decoding to match")
	}
}
