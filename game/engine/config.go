package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/boxpusher/game/anim"
)

// Profile holds the timings and pose names of move animations. Durations
// are in seconds.
type Profile struct {
	GridSize float64 `yaml:"grid_size" json:"grid_size"`
	Easing   string  `yaml:"easing" json:"easing"`

	TurnDuration float64 `yaml:"turn_duration" json:"turn_duration"`
	WalkDuration float64 `yaml:"walk_duration" json:"walk_duration"`

	PushLeadFraction   float64 `yaml:"push_lead_fraction" json:"push_lead_fraction"`
	PushLeadDuration   float64 `yaml:"push_lead_duration" json:"push_lead_duration"`
	PushTravelDuration float64 `yaml:"push_travel_duration" json:"push_travel_duration"`
	PushRecoilDuration float64 `yaml:"push_recoil_duration" json:"push_recoil_duration"`

	BoxLeadPause  float64 `yaml:"box_lead_pause" json:"box_lead_pause"`
	BoxTrailPause float64 `yaml:"box_trail_pause" json:"box_trail_pause"`

	WalkPose         string  `yaml:"walk_pose" json:"walk_pose"`
	PushPose         string  `yaml:"push_pose" json:"push_pose"`
	IdlePose         string  `yaml:"idle_pose" json:"idle_pose"`
	PushPoseDuration float64 `yaml:"push_pose_duration" json:"push_pose_duration"`
	IdlePoseDuration float64 `yaml:"idle_pose_duration" json:"idle_pose_duration"`

	// SettleStep is the tick length used when fast-forwarding animations
	SettleStep float64 `yaml:"settle_step" json:"settle_step"`
}

// DefaultProfile returns the stock timings
func DefaultProfile() Profile {
	return Profile{
		GridSize:           1.0,
		Easing:             "linear",
		TurnDuration:       0.1,
		WalkDuration:       0.5,
		PushLeadFraction:   1.0 / 3.0,
		PushLeadDuration:   0.1,
		PushTravelDuration: 0.7,
		PushRecoilDuration: 0.1,
		BoxLeadPause:       0.1,
		BoxTrailPause:      0.1,
		WalkPose:           "walk",
		PushPose:           "push",
		IdlePose:           "idle",
		PushPoseDuration:   1.0,
		IdlePoseDuration:   1.0,
		SettleStep:         1.0 / 60.0,
	}
}

// ValidateProfile checks a profile for usable values
func ValidateProfile(p Profile) error {
	if p.GridSize <= 0 {
		return fmt.Errorf("profile validation: grid_size must be positive, got %v", p.GridSize)
	}
	if _, err := anim.EasingByName(p.Easing); err != nil {
		return fmt.Errorf("profile validation: %w", err)
	}

	durations := map[string]float64{
		"turn_duration":        p.TurnDuration,
		"walk_duration":        p.WalkDuration,
		"push_lead_duration":   p.PushLeadDuration,
		"push_travel_duration": p.PushTravelDuration,
		"push_recoil_duration": p.PushRecoilDuration,
		"box_lead_pause":       p.BoxLeadPause,
		"box_trail_pause":      p.BoxTrailPause,
		"push_pose_duration":   p.PushPoseDuration,
	}
	for name, d := range durations {
		if d < 0 {
			return fmt.Errorf("profile validation: %s must not be negative, got %v", name, d)
		}
	}

	if p.IdlePoseDuration <= 0 {
		return fmt.Errorf("profile validation: idle_pose_duration must be positive, got %v", p.IdlePoseDuration)
	}
	if p.SettleStep <= 0 {
		return fmt.Errorf("profile validation: settle_step must be positive, got %v", p.SettleStep)
	}
	if p.PushLeadFraction < 0 || p.PushLeadFraction >= 1 {
		return fmt.Errorf("profile validation: push_lead_fraction must be in [0,1), got %v", p.PushLeadFraction)
	}
	return nil
}

// ParseProfile reads YAML over the defaults, so a file only needs the
// values it changes
func ParseProfile(data []byte) (*Profile, error) {
	p := DefaultProfile()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse animation profile: %w", err)
	}
	if err := ValidateProfile(p); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadProfile loads a profile from a YAML file
func LoadProfile(filename string) (*Profile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read animation profile '%s': %w", filename, err)
	}
	return ParseProfile(data)
}

func (p Profile) easing() anim.Easing {
	e, err := anim.EasingByName(p.Easing)
	if err != nil {
		return anim.Linear
	}
	return e
}
