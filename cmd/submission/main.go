package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	submissioncmd "github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/cmd/submission"
)

func main() {
	cfg, err := submissioncmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[SUBMISSION] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := submissioncmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
