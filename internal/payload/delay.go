package payload

import (
	"math"
	"math/rand/v2"
	"time"
)

const (
	DefaultTypingSpeed = 25 // characters per second

	minTypingSpeed   = 15
	maxSpeedVariance = 5
	minThinkingMs    = 200
	maxThinkingMs    = 500
	minDelaySeconds  = 1
	maxDelaySeconds  = 15
)

// Float64Source yields uniform samples in [0,1).
type Float64Source interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// TypingDelay simulates how long a person needs to type charCount characters.
// The result is randomized per call and always lies within [1,15] seconds.
// A NaN or non-positive speed selects DefaultTypingSpeed.
func TypingDelay(charCount int, speed float64, src Float64Source) int {
	if math.IsNaN(speed) || speed <= 0 {
		speed = DefaultTypingSpeed
	}
	if src == nil {
		src = globalRand{}
	}
	variation := clamp(speed-minTypingSpeed, 0, maxSpeedVariance)
	cps := speed - variation + src.Float64()*2*variation
	if cps < minTypingSpeed {
		cps = minTypingSpeed
	}
	typingMs := float64(charCount) / cps * 1000
	thinkingMs := minThinkingMs + src.Float64()*(maxThinkingMs-minThinkingMs)
	secs := math.Round((typingMs + thinkingMs) / 1000)
	return int(clamp(secs, minDelaySeconds, maxDelaySeconds))
}

// TypingDuration is TypingDelay as a time.Duration.
func TypingDuration(charCount int, speed float64, src Float64Source) time.Duration {
	return time.Duration(TypingDelay(charCount, speed, src)) * time.Second
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
