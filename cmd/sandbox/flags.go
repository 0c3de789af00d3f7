package main

import (
	"fmt"
	"strconv"
)

func parseFloat32(s string, dst *float32) error {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return fmt.Errorf("parse %q: %w", s, err)
	}
	*dst = float32(v)
	return nil
}
