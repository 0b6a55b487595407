package main

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"kidgames-ws/snake"
)

type Config struct {
	Port         string
	RejoinSecret string
	GamesLogDir  string
	SnakeTuning  snake.Tuning
}

// GameTuning is the optional YAML tuning file named by GAME_CONFIG.
type GameTuning struct {
	Snake snake.Tuning `yaml:"snake"`
}

func MustLoadConfig() *Config {
	godotenv.Load()
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	rejoinSecret := os.Getenv("REJOIN_SECRET")
	if rejoinSecret == "" {
		panic("REJOIN_SECRET is not provided!")
	}

	tuning := snake.DefaultTuning()
	if path := os.Getenv("GAME_CONFIG"); path != "" {
		tuning = mustLoadTuning(path)
	}

	return &Config{
		Port:         port,
		RejoinSecret: rejoinSecret,
		GamesLogDir:  os.Getenv("GAMES_LOG_DIR"),
		SnakeTuning:  tuning,
	}
}

// mustLoadTuning panics on a broken tuning file: silently running a
// production server with default speeds is worse than failing to start.
func mustLoadTuning(path string) snake.Tuning {
	data, err := os.ReadFile(path)
	if err != nil {
		panic("GAME_CONFIG could not be read: " + err.Error())
	}
	var parsed GameTuning
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		panic("GAME_CONFIG is not valid YAML: " + err.Error())
	}
	merged := snake.DefaultTuning()
	for speed, ticks := range parsed.Snake.TicksPerMove {
		if ticks > 0 {
			merged.TicksPerMove[speed] = ticks
		}
	}
	return merged
}
