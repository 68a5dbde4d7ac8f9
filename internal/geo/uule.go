package geo

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// UULE encodes coordinates as a Google UULE location token. The token is
// a pure function of the coordinates, so precise geo-targeting works even
// when reverse geocoding is unavailable.
func UULE(lat, lon float64) string {
	location := fmt.Sprintf("%.6f,%.6f", lat, lon)
	encoded := base64.StdEncoding.EncodeToString([]byte(location))
	return "w+CAIQICI" + strings.TrimRight(encoded, "=")
}
