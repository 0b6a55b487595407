package main

import (
	"net/http"
	"time"

	"kidgames-ws/archimedes"
	"kidgames-ws/comet"
	"kidgames-ws/maze"
	"kidgames-ws/snake"
	"kidgames-ws/wallmover"
)

func main() {
	config := MustLoadConfig()
	rejoin := NewRejoin(config.RejoinSecret)
	events := NewEventLog(config.GamesLogDir)

	server := NewServer()
	server.RegisterHost(NewHost("wallmover", 150*time.Millisecond, func(time.Time) simulation {
		return wallmover.NewSim()
	}, rejoin, events))
	server.RegisterHost(NewHost("maze", 150*time.Millisecond, func(time.Time) simulation {
		return maze.NewSim()
	}, rejoin, events))
	server.RegisterHost(NewHost("snake", 75*time.Millisecond, func(time.Time) simulation {
		return snake.NewSim(config.SnakeTuning)
	}, rejoin, events))
	server.RegisterHost(NewHost("comet", 50*time.Millisecond, func(now time.Time) simulation {
		return comet.NewSim(now)
	}, rejoin, events))
	server.RegisterHost(NewHost("archimedes", 50*time.Millisecond, func(time.Time) simulation {
		return archimedes.NewSim()
	}, rejoin, events))
	server.Start()

	handler := NewHTTPServer(server)
	LogStartedServer(config.Port)
	http.ListenAndServe(":"+config.Port, handler)
}
