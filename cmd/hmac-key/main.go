package main

import (
	"flag"
	"log"
	"os"

	"github.com/louisbranch/onboarding.space/internal/tools/hmackey"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("[HMAC-KEY] ")
	cfg, err := hmackey.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	if err := hmackey.Run(cfg, os.Stdout, nil); err != nil {
		log.Fatalf("generate key: %v", err)
	}
}
