package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"chatlink/internal/di"
	"chatlink/internal/tui"
)

func main() {
	// Optional .env next to the binary, real env wins.
	_ = godotenv.Load()

	app, err := di.InitializeApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "chatctl: %v\n", err)
		os.Exit(1)
	}

	app.Log.Info().
		Str("api", app.Config.API.BaseURL).
		Str("socket", app.Config.Socket.URL).
		Msg("starting chatctl")

	model := tui.New(tui.Deps{
		Config: app.Config,
		API:    app.API,
		Tokens: app.Tokens,
		Cache:  app.Cache,
		Log:    app.Log,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		app.Log.Error().Err(err).Msg("program exited with error")
		os.Exit(1)
	}
}
