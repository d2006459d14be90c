package formats

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MTLMaterial holds the subset of MTL statements that affect baking.
type MTLMaterial struct {
	Name string

	Diffuse    [3]float32 // Kd, linear RGB
	DiffuseMap string     // map_Kd

	// Roughness comes from the PBR extension (Pr / map_Pr). When Pr is absent
	// it is derived from the specular exponent Ns.
	Roughness    float32
	RoughnessMap string
	HasRoughness bool

	Shininess float32 // Ns
	Dissolve  float32 // d
}

// DefaultRoughness is used when neither Pr nor Ns is present.
const DefaultRoughness = 0.5

// ParseMTL parses MTL data and returns materials keyed by name.
func ParseMTL(data []byte) (map[string]*MTLMaterial, error) {
	materials := make(map[string]*MTLMaterial)
	var current *MTLMaterial

	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		if fields[0] == "newmtl" {
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: newmtl without name", line)
			}
			current = &MTLMaterial{
				Name:      strings.Join(fields[1:], " "),
				Diffuse:   [3]float32{0.8, 0.8, 0.8},
				Roughness: DefaultRoughness,
				Dissolve:  1,
			}
			materials[current.Name] = current
			continue
		}
		if current == nil {
			continue
		}

		var err error
		switch fields[0] {
		case "Kd":
			var v []float32
			if v, err = parseFloats(fields[1:], 3); err == nil {
				current.Diffuse = [3]float32{v[0], v[1], v[2]}
			}
		case "map_Kd":
			current.DiffuseMap = mapFile(fields[1:])
		case "Pr":
			var f float64
			if f, err = strconv.ParseFloat(last(fields), 32); err == nil {
				current.Roughness = clamp01(float32(f))
				current.HasRoughness = true
			}
		case "map_Pr":
			current.RoughnessMap = mapFile(fields[1:])
		case "Ns":
			var f float64
			if f, err = strconv.ParseFloat(last(fields), 32); err == nil {
				current.Shininess = float32(f)
				if !current.HasRoughness {
					current.Roughness = RoughnessFromShininess(current.Shininess)
				}
			}
		case "d":
			var f float64
			if f, err = strconv.ParseFloat(last(fields), 32); err == nil {
				current.Dissolve = clamp01(float32(f))
			}
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %s", line, ErrInvalidOBJNumber, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return materials, nil
}

// RoughnessFromShininess maps a Phong exponent in [0, 1000] to roughness,
// matching the conversion used by common DCC importers.
func RoughnessFromShininess(ns float32) float32 {
	ns = max(0, min(ns, 1000))
	return 1 - float32(math.Sqrt(float64(ns)/1000))
}

// mapFile returns the file name of a map statement, skipping -option args.
func mapFile(args []string) string {
	for i := 0; i < len(args); i++ {
		if strings.HasPrefix(args[i], "-") {
			// options take one to three numeric or on/off arguments
			for i+1 < len(args) && isOptionArg(args[i+1]) {
				i++
			}
			continue
		}
		return strings.Join(args[i:], " ")
	}
	return ""
}

func isOptionArg(s string) bool {
	if s == "on" || s == "off" {
		return true
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func last(fields []string) string {
	return fields[len(fields)-1]
}

func clamp01(f float32) float32 {
	return max(0, min(f, 1))
}
