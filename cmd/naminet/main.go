// Package main provides the NamiNet command-line interface.
package main

import (
	"fmt"
	"log"
	"os"
)

const version = "v0.1.0"

func usage() {
	fmt.Fprintf(os.Stderr, `NamiNet %s - handwritten digit recognition

Usage:
  naminet <command> [flags]

Commands:
  train      Train a network and save a snapshot
  eval       Evaluate a snapshot on a dataset
  predict    Classify one image from a dataset
  version    Show version

Run 'naminet <command> -h' for command flags.
`, version)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("naminet: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "train":
		err = runTrain(args)
	case "eval":
		err = runEval(args)
	case "predict":
		err = runPredict(args)
	case "version":
		fmt.Printf("NamiNet %s\n", version)
	case "help", "-h", "--help":
		usage()
	default:
		usage()
		log.Fatalf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatal(err)
	}
}
