package player

import (
	"fmt"
	"io"
	"os"

	"avm1/pkg/action"
	"avm1/pkg/color"
	"avm1/pkg/runtime"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Player drives one action file through the pipeline: translate the raw
// bytes, then schedule the translated routine against a fresh context.
type Player struct {
	Help       bool   // Show help message
	Verbose    bool   // Enable verbose output
	NoColor    bool   // Disable colored output
	SourceFile string // Path to the raw action-byte file
	ConfigFile string // Optional TOML config path
	Seed       int64  // Random seed (0 = time-based)
}

// Config is the optional TOML-file configuration for runtime limits.
type Config struct {
	StackSize int `toml:"stack_size"` // operand stack bytes
	MaxSteps  int `toml:"max_steps"`  // per-routine instruction cap
	MaxFrames int `toml:"max_frames"` // scheduler iteration cap
}

// loadConfig reads the TOML config if one was given, falling back to
// defaults otherwise.
func (opts *Player) loadConfig() (Config, error) {
	cfg := Config{
		StackSize: runtime.DefaultStackSize,
		MaxFrames: runtime.DefaultMaxFrames,
	}
	if opts.ConfigFile == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(opts.ConfigFile, &cfg); err != nil {
		return cfg, fmt.Errorf("config load failed: %w", err)
	}
	return cfg, nil
}

// Run translates and executes the source file.
func (opts *Player) Run() error {
	return opts.RunTo(os.Stdout)
}

// RunTo translates and executes the source file, sending trace output to w.
func (opts *Player) RunTo(w io.Writer) error {
	log.Info("Processing file", "file", opts.SourceFile)

	data, err := os.ReadFile(opts.SourceFile)
	if err != nil {
		log.Fatal("Failed to read file", "file", opts.SourceFile, "error", err)
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	prog, err := action.Translate(data)
	if err != nil {
		fmt.Println(color.BrightRedText("=== Decode Errors ==="))
		fmt.Println(err)
		return fmt.Errorf("translation failed: %w", err)
	}

	if opts.Verbose {
		opts.disassemble(prog)
	}

	ctxOpts := []runtime.Option{
		runtime.WithWriter(w),
		runtime.WithStackSize(cfg.StackSize),
		runtime.WithMaxSteps(cfg.MaxSteps),
	}
	if opts.Seed != 0 {
		ctxOpts = append(ctxOpts, runtime.WithRandomSeed(opts.Seed))
	}

	ctx := runtime.NewContext(prog, ctxOpts...)
	defer ctx.Close()

	sched := runtime.NewScheduler(ctx,
		[]runtime.Routine{prog.Instructions},
		runtime.WithMaxFrames(cfg.MaxFrames))

	fmt.Println(color.GreenText("\n=== Program Output ==="))
	if err := sched.Run(); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	return nil
}

// disassemble prints the translated instruction listing.
func (opts *Player) disassemble(prog *action.Program) {
	fmt.Println(color.GreenText("\n=== Translated Actions ==="))
	if len(prog.Pool) > 0 {
		fmt.Println(color.GrayText(fmt.Sprintf("constant pool: %d entries", len(prog.Pool))))
		for i, s := range prog.Pool {
			fmt.Printf("%s: %s\n",
				color.CyanText(fmt.Sprintf("c%d", i)),
				color.BlueText(fmt.Sprintf("%q", s)))
		}
	}
	if len(prog.Instructions) == 0 {
		fmt.Println(color.GrayText("No instructions generated."))
		return
	}
	for i, in := range prog.Instructions {
		fmt.Printf("%s: %s %s\n",
			color.CyanText(fmt.Sprintf("%d", i)),
			color.YellowText(in.String()),
			color.GrayText(color.Offset(in.Offset)))
	}
}
