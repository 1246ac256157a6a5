package main

import (
	"os"
	"strconv"

	"github.com/Sunshengjin/rmf-core/geometry"
)

// envFloat reads a float default from the environment, falling back when
// the variable is unset or malformed.
func envFloat(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func geometryCircle(radius float64) (*geometry.FinalConvexShape, error) {
	return geometry.FinalizeConvex(geometry.Circle{Radius: radius})
}
