package anim

import (
	"fmt"
	"math"
	"strings"
)

// Easing maps linear progress in [0,1] to eased progress. f(0)=0, f(1)=1.
type Easing func(t float64) float64

func Linear(t float64) float64 { return t }

func InQuad(t float64) float64 { return t * t }

func OutQuad(t float64) float64 { return t * (2 - t) }

func InOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

func InOutSine(t float64) float64 {
	return -(math.Cos(math.Pi*t) - 1) / 2
}

func OutBack(t float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	return 1 + c3*math.Pow(t-1, 3) + c1*math.Pow(t-1, 2)
}

var easings = map[string]Easing{
	"linear":      Linear,
	"in-quad":     InQuad,
	"out-quad":    OutQuad,
	"in-out-quad": InOutQuad,
	"in-out-sine": InOutSine,
	"out-back":    OutBack,
}

// EasingByName looks up an easing. Names are case-insensitive and accept
// '_' in place of '-'. The empty name is linear.
func EasingByName(name string) (Easing, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	if key == "" {
		return Linear, nil
	}
	if e, ok := easings[key]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("unknown easing %q", name)
}
