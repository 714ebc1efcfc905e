package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/booklib/internal/ctl"
	"github.com/dmitrijs2005/booklib/internal/server/config"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	if err := ctl.NewApp(cfg).Run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
