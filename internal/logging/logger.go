package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger.
func Setup(level string, pretty bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out io.Writer = os.Stderr
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// RoomLogger tags every line with the room code.
type RoomLogger struct {
	zerolog zerolog.Logger
}

func ForRoom(roomID string) RoomLogger {
	return RoomLogger{log.With().Str("room-code", roomID).Logger()}
}

func (l RoomLogger) Created(quizID, organizer string) {
	l.zerolog.Info().Str("quiz", quizID).Str("organizer", organizer).Msg("Created room")
}

func (l RoomLogger) Removed(reason string) {
	l.zerolog.Info().Str("reason", reason).Msg("Removing room")
}

func (l RoomLogger) PlayerJoined(name string) {
	l.zerolog.Info().Str("player", name).Msg("Player joined")
}

func (l RoomLogger) PlayerLeft(name string, inGame bool) {
	l.zerolog.Info().Str("player", name).Bool("in-game", inGame).Msg("Player left")
}

func (l RoomLogger) PlayerBanned(name string) {
	l.zerolog.Info().Str("player", name).Msg("Player banned")
}

func (l RoomLogger) TimerIgnored() {
	l.zerolog.Debug().Msg("Timer already running, start ignored")
}

func (l RoomLogger) Error(err error, msg string) {
	l.zerolog.Error().Err(err).Msg(msg)
}

// ForSocket tags lines with the connection id and remote address.
func ForSocket(socketID, ip string) zerolog.Logger {
	return log.With().Str("socket", socketID).Str("ip", ip).Logger()
}
