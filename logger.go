package main

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

type RoomLogger struct {
	zerolog zerolog.Logger
}

func GetRoomIPLogger(ip string, roomCode string) RoomLogger {
	return RoomLogger{log.With().Str("ip", ip).Str("room-code", roomCode).Logger()}
}

func GetRoomLogger(gameID string, roomCode string) RoomLogger {
	return RoomLogger{log.With().Str("game", gameID).Str("room-code", roomCode).Logger()}
}

func (l RoomLogger) RemovingRoom() {
	l.zerolog.Info().Msg("Removing room")
}

func (l RoomLogger) JoinedRoom() {
	l.zerolog.Info().Msg("Joined room")
}

func (l RoomLogger) LeftRoom() {
	l.zerolog.Info().Msg("Left room")
}

func LogRoomCreated(gameID string, roomCode string) {
	log.Info().Str("game", gameID).Str("room-code", roomCode).Msg("Created room")
}

func LogStartedServer(port string) {
	log.Info().Msgf("Starting server on port %v", port)
}

func LogErrorWhileUpgradingHTTP(err error) {
	log.Error().Err(err).Msg("Error while upgrading HTTP")
}

func LogEventLogFailure(err error) {
	log.Error().Err(err).Msg("Event log write failed")
}
