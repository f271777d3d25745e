package main

import (
	"flag"
	"fmt"
	"os"

	"avm1/internal/logger"
	"avm1/internal/player"
	"avm1/pkg/color"

	"github.com/charmbracelet/log"
)

// Main entry point for the action player.
func main() {
	options := player.Player{}

	flag.BoolVar(&options.Help, "h", false, "Show help")
	flag.BoolVar(&options.Verbose, "v", false, "Verbose mode (disassembly listing)")
	flag.BoolVar(&options.NoColor, "n", false, "No color")
	flag.StringVar(&options.ConfigFile, "c", "", "TOML config file for runtime limits")
	flag.Int64Var(&options.Seed, "s", 0, "Random seed (0 = time-based)")

	flag.Parse()
	args := flag.Args()

	logger.Init(options.Verbose, options.NoColor)
	if options.Help {
		fmt.Printf("Usage: %s [options] <actions.bin>\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	if options.NoColor {
		color.EnableColor(false)
	}

	if len(args) == 0 {
		log.Fatal("No input file provided", "help", fmt.Sprintf("%s -h", os.Args[0]))
	}

	options.SourceFile = args[0]

	if err := options.Run(); err != nil {
		log.Fatal("Playback failed", "error", err)
	}
}
