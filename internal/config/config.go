// Package config reads the board settings from an optional JSON file and
// command-line flags. Flags win over the file.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/dulchik/chess-position-trainer/internal/board"
	"github.com/dulchik/chess-position-trainer/internal/position"
)

// DefaultFile is read when -config is not given. It may be missing.
const DefaultFile = "chessboard.json"

// Config holds every setting of the hosts.
type Config struct {
	// EnginePath is the UCI engine executable. Empty disables engine
	// features.
	EnginePath string `json:"engine"`
	MoveTimeMS int    `json:"movetime"`
	CellSize   int    `json:"cell"`
	FEN        string `json:"fen"`
	Flip       bool   `json:"flip"`
	// EngineSide is "white" or "black" to let the engine answer for that
	// side, empty for none.
	EngineSide string `json:"engine_side"`
	// Elo limits the engine strength when positive.
	Elo       int    `json:"elo"`
	SpriteDir string `json:"sprites"`
	LogLevel  string `json:"log_level"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		MoveTimeMS: 100,
		CellSize:   board.DefaultCellSize,
		FEN:        position.StartFEN,
		LogLevel:   "info",
	}
}

// Load reads a JSON file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse defines the flags on set, parses args, reads the config file and
// applies the flags that were set on top of it.
func Parse(set *flag.FlagSet, args []string) (Config, error) {
	var (
		path string
		fl   = Default()
	)
	set.StringVar(&path, "config", DefaultFile, "JSON config file")
	set.StringVar(&fl.EnginePath, "engine", fl.EnginePath, "path to a UCI engine executable")
	set.IntVar(&fl.MoveTimeMS, "movetime", fl.MoveTimeMS, "engine search time per move in milliseconds")
	set.IntVar(&fl.CellSize, "cell", fl.CellSize, "board cell size in pixels")
	set.StringVar(&fl.FEN, "fen", fl.FEN, "starting position")
	set.BoolVar(&fl.Flip, "flip", fl.Flip, "draw black at the bottom")
	set.StringVar(&fl.EngineSide, "engine-side", fl.EngineSide, "side the engine plays: white, black or empty")
	set.IntVar(&fl.Elo, "elo", fl.Elo, "limit the engine to this Elo, 0 for full strength")
	set.StringVar(&fl.SpriteDir, "sprites", fl.SpriteDir, "directory with Chess_<piece><l|d>.png sprites")
	set.StringVar(&fl.LogLevel, "log-level", fl.LogLevel, "debug, info, warn or error")
	if err := set.Parse(args); err != nil {
		return Config{}, err
	}

	explicit := false
	set.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})
	cfg, err := Load(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			cfg = Default()
		} else {
			return Config{}, err
		}
	}

	set.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "engine":
			cfg.EnginePath = fl.EnginePath
		case "movetime":
			cfg.MoveTimeMS = fl.MoveTimeMS
		case "cell":
			cfg.CellSize = fl.CellSize
		case "fen":
			cfg.FEN = fl.FEN
		case "flip":
			cfg.Flip = fl.Flip
		case "engine-side":
			cfg.EngineSide = fl.EngineSide
		case "elo":
			cfg.Elo = fl.Elo
		case "sprites":
			cfg.SpriteDir = fl.SpriteDir
		case "log-level":
			cfg.LogLevel = fl.LogLevel
		}
	})
	return cfg, cfg.Validate()
}

// Validate checks ranges and the starting position.
func (c Config) Validate() error {
	if c.CellSize < 16 {
		return fmt.Errorf("config: cell size %d is below 16", c.CellSize)
	}
	if c.MoveTimeMS <= 0 {
		return fmt.Errorf("config: movetime must be positive, got %d", c.MoveTimeMS)
	}
	if c.Elo < 0 {
		return fmt.Errorf("config: elo must not be negative, got %d", c.Elo)
	}
	if _, _, err := c.EngineColor(); err != nil {
		return err
	}
	if _, err := position.ParseFEN(c.FEN); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Orientation returns the configured board orientation.
func (c Config) Orientation() board.Orientation {
	if c.Flip {
		return board.BlackBottom
	}
	return board.WhiteBottom
}

// EngineColor returns the side the engine plays; ok is false when it plays
// neither.
func (c Config) EngineColor() (side position.Color, ok bool, err error) {
	switch strings.ToLower(c.EngineSide) {
	case "", "none":
		return position.White, false, nil
	case "white", "w":
		return position.White, true, nil
	case "black", "b":
		return position.Black, true, nil
	}
	return position.White, false, fmt.Errorf("config: engine side %q is not white, black or empty", c.EngineSide)
}

// Position parses the configured FEN.
func (c Config) Position() (position.Position, error) {
	return position.ParseFEN(c.FEN)
}

// EngineOption is a UCI option set after the handshake.
type EngineOption struct {
	Name, Value string
}

// EngineOptions returns the options implied by the settings.
func (c Config) EngineOptions() []EngineOption {
	if c.Elo <= 0 {
		return nil
	}
	return []EngineOption{
		{Name: "UCI_LimitStrength", Value: "true"},
		{Name: "UCI_Elo", Value: strconv.Itoa(c.Elo)},
	}
}
