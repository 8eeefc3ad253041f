package config

import (
	_ "embed"
)

//go:embed defaults/match.yaml
var defaultMatchYAML []byte

// DefaultMatchConfig returns the default match configuration:
// two people on a 7x6 board playing four in a row with power-ups.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		Board: BoardConfig{
			Width:         7,
			Height:        6,
			WinningLength: 4,
		},
		Powerups: PowerupConfig{
			Enabled: true,
			Length:  3,
		},
		Players: []PlayerConfig{
			{Kind: KindHuman},
			{Kind: KindHuman},
		},
		Timing: TimingConfig{
			CollapseStaggerMS: 39,
			HighlightMS:       1000,
			DropMSPerRow:      30,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultMatchYAML
}
