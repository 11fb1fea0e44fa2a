package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/concat-runtime/concat"
	"github.com/wippyai/concat-runtime/runtime"
	"github.com/wippyai/concat-runtime/value"
)

func main() {
	var (
		shape       = flag.String("shape", "", "Operand pattern, e.g. svs (s literal, v value)")
		dstSpec     = flag.String("dst", "null", "Initial destination value")
		appendMode  = flag.Bool("append", false, "Append to the destination instead of replacing it")
		guestFile   = flag.String("guest", "", "Core wasm module exporting memory and cabi_realloc")
		pages       = flag.Uint("pages", 0, "Memory limit in 64KB pages (0 = default)")
		list        = flag.Bool("list", false, "List combinators and exit")
		verbose     = flag.Bool("v", false, "Debug logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	cfg, err := buildConfig(*guestFile, uint32(*pages), *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *list {
		if err := listCombinators(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *shape == "" {
		fmt.Fprintln(os.Stderr, "Usage: concat -shape <pattern> [-dst value] [-append] operand...")
		fmt.Fprintln(os.Stderr, "       concat -list")
		fmt.Fprintln(os.Stderr, "       concat -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "Values: null, bool:true, int:42, float:1.5, str:text, array:N, text")
		os.Exit(1)
	}

	if err := run(cfg, *shape, *dstSpec, *appendMode, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildConfig(guestFile string, pages uint32, verbose bool) (*runtime.Config, error) {
	cfg := &runtime.Config{MemoryLimitPages: pages}
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
		cfg.Logger = logger
	}
	if guestFile != "" {
		data, err := os.ReadFile(guestFile)
		if err != nil {
			return nil, fmt.Errorf("read guest: %w", err)
		}
		cfg.GuestModule = data
	}
	return cfg, nil
}

var (
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// styled renders with s only when stdout is a terminal.
func styled(s lipgloss.Style, text string) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return text
	}
	return s.Render(text)
}

func listCombinators(cfg *runtime.Config) error {
	ctx := context.Background()
	rt, err := runtime.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create runtime: %w", err)
	}
	defer rt.Close(ctx)

	for _, comb := range rt.Catalog().Combinators() {
		mode := "fresh, append"
		if !comb.Shape().FreshCapable() {
			mode = "append only"
		}
		fmt.Printf("%s %s\n", styled(nameStyle, comb.Signature()), styled(dimStyle, "("+mode+")"))
	}
	return nil
}

func run(cfg *runtime.Config, pattern, dstSpec string, appendMode bool, args []string) error {
	ctx := context.Background()

	shape, err := concat.ParseShape(strings.TrimPrefix(pattern, "concat_"))
	if err != nil {
		return err
	}

	rt, err := runtime.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create runtime: %w", err)
	}
	defer rt.Close(ctx)

	// shapes outside the default set are registered on demand
	if _, err := rt.Catalog().Register(shape.Pattern()); err != nil {
		return err
	}

	st := rt.Store()
	events := &value.Counter{}
	st.Subscribe(events)

	dst, err := parseValue(st, dstSpec)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	ops, err := buildOperands(st, shape, args)
	if err != nil {
		return err
	}

	if err := rt.Concat(shape.Pattern(), dst, appendMode, ops...); err != nil {
		return fmt.Errorf("%s: %w", shape.Name(), err)
	}

	text, err := st.Text(dst)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", styled(nameStyle, shape.Name()+":"), styled(valueStyle, fmt.Sprintf("%q", text)))
	fmt.Println(styled(dimStyle, fmt.Sprintf("length %d, coerced %d, disposed %d, adopted %d",
		len(text),
		events.Count(value.EventCoerced),
		events.Count(value.EventDisposed),
		events.Count(value.EventAdopted))))
	return nil
}
