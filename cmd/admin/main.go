// Command admin creates an ADMIN account in the movie API database.
// It accepts the same flags and config file as the server.
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/movieapi/internal/admin"
	"github.com/dmitrijs2005/movieapi/internal/server"
	"github.com/dmitrijs2005/movieapi/internal/server/config"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	_, err = admin.CreateAdmin(ctx, app, admin.NewPrompter(os.Stdin, os.Stdout))
	app.Close()
	if err != nil {
		log.Fatalf("%v", err)
	}
}
