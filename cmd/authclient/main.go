package main

import (
	"errors"
	"os"
	"runtime/debug"

	"github.com/jrsteele09/go-auth-client/cmd/authclient/cmd"
	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(run())
}

func run() (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			exitCode = cmd.ExitCodeFor(errors.New("panic recovered"))
		}
	}()
	return cmd.Execute()
}
