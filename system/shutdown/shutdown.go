package shutdown

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

type step struct {
	name string
	fn   func()
}

var steps []step

// Register adds a cleanup step. Steps run in reverse registration order,
// like defers.
func Register(name string, fn func()) {
	steps = append(steps, step{name: name, fn: fn})
}

// WaitForSignal blocks until SIGINT or SIGTERM arrives.
func WaitForSignal() os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	return sig
}

// Run executes the registered cleanup steps.
func Run() {
	for i := len(steps) - 1; i >= 0; i-- {
		log.Debug().Str("step", steps[i].name).Msg("Running shutdown step")
		steps[i].fn()
	}
	log.Info().Msg("Shutdown complete")
}

func ShutdownWithError(err error, msg string) {
	log.Error().Err(err).Msg(msg)
	Run()
	os.Exit(1)
}
