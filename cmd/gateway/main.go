package main

import (
	"context"
	"log"

	"github.com/dalemusser/eventhub/internal/app/bootstrap/gateway"
	"github.com/dalemusser/waffle/app"
)

func main() {
	if err := app.Run(context.Background(), gateway.Hooks); err != nil {
		log.Fatal(err)
	}
}
