package config

import (
	"fmt"
	"strings"
)

// DifficultyPreset represents a named bot strength.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// Search depths used by the presets.
const (
	NormalDepth = 3
	HardDepth   = 5
)

// Presets returns every difficulty preset, weakest first.
func Presets() []DifficultyPreset {
	return []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard}
}

// ParsePreset converts a preset name, ignoring case.
func ParsePreset(name string) (DifficultyPreset, error) {
	preset := DifficultyPreset(strings.ToLower(strings.TrimSpace(name)))
	for _, p := range Presets() {
		if p == preset {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q (want easy, normal or hard)", name)
}

// ApplyPreset sets every bot seat to the strength of the preset.
// Easy bots play at random, normal and hard bots search 3 and 5 plies.
// Human seats are left alone.
func ApplyPreset(cfg *MatchConfig, preset DifficultyPreset) {
	for i := range cfg.Players {
		p := &cfg.Players[i]
		if !p.IsBot() {
			continue
		}

		switch preset {
		case DifficultyEasy:
			p.Kind = KindRandom
			p.Depth = 0
		case DifficultyNormal:
			p.Kind = KindMinimax
			p.Depth = NormalDepth
		case DifficultyHard:
			p.Kind = KindMinimax
			p.Depth = HardDepth
		}
	}
}
