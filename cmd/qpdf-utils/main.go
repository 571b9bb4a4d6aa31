package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JaimeStill/qpdf-utils/internal/config"
	"github.com/JaimeStill/qpdf-utils/pkg/logging"
	"github.com/JaimeStill/qpdf-utils/pkg/pdffile"
	"github.com/JaimeStill/qpdf-utils/pkg/pdftype"
	"github.com/JaimeStill/qpdf-utils/pkg/qpdf"
	"github.com/JaimeStill/qpdf-utils/pkg/tempfile"
)

const usage = `usage: qpdf-utils [-config path] [-password pw] <command> [args]

commands:
  pages     <file>                          print the page count
  encrypted <file>                          print whether the file is encrypted
  extract   <file> <range> <target>         write pages, e.g. 3 or 2-4, to target
  split     <file> <template>               write one file per page, e.g. page-%d.pdf
  append    [-input-password pw]... <target> <file> <inputs...>
  decrypt   <file> [target]                 decrypt with -password; no target replaces file
  encrypt   [-user pw] [-owner pw] [-key-length n] <file> [target]
`

var errUsage = errors.New("invalid usage")

// cli holds the streams and engine shared by every command.
// runner is built from configuration unless already set.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	runner qpdf.Runner
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{stdout: os.Stdout, stderr: os.Stderr}
	if err := c.run(ctx, os.Args[1:]); err != nil {
		report(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// report writes err to w, preceded by the usage text for usage errors.
// usage contains a literal %d, so it is never passed as a format.
func report(w io.Writer, err error) {
	if errors.Is(err, errUsage) {
		io.WriteString(w, usage)
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

func (c *cli) run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("qpdf-utils", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configPath = fs.String("config", "", "Path to a TOML config file (default: config.toml if present)")
		password   = fs.String("password", "", "Password that decrypts the source file")
	)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	if fs.NArg() == 0 {
		return fmt.Errorf("%w: command required", errUsage)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	// stdout carries command output, so logs always go to stderr.
	logger := logging.NewWriter(&cfg.Logging, c.stderr)

	temp, err := tempfile.New(&cfg.Temp, logger)
	if err != nil {
		return fmt.Errorf("temp store: %w", err)
	}

	if c.runner == nil {
		c.runner = qpdf.New(&cfg.QPDF, logger)
	}

	opts := pdffile.Options{
		Runner:   c.runner,
		Password: *password,
		Temp:     temp,
		Checker:  pdftype.Checker{Strict: cfg.Documents.StrictValidation},
		MaxSize:  cfg.Documents.MaxInputSizeBytes(),
		Logger:   logger,
	}

	command, rest := fs.Arg(0), fs.Args()[1:]

	switch command {
	case "pages":
		return c.pages(ctx, rest, opts)
	case "encrypted":
		return c.encrypted(rest, opts)
	case "extract":
		return c.extract(ctx, rest, opts)
	case "split":
		return c.split(ctx, rest, opts)
	case "append":
		return c.append(ctx, rest, opts)
	case "decrypt":
		return c.decrypt(ctx, rest, opts)
	case "encrypt":
		return c.encrypt(ctx, rest, opts)
	}

	return fmt.Errorf("%w: unknown command %q", errUsage, command)
}

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("config finalize failed: %w", err)
	}

	return cfg, nil
}

func (c *cli) pages(ctx context.Context, args []string, opts pdffile.Options) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: pages <file>", errUsage)
	}

	return pdffile.With(args[0], opts, func(d *pdffile.Document) error {
		pages, err := d.Pages(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.stdout, pages)
		return nil
	})
}

func (c *cli) encrypted(args []string, opts pdffile.Options) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: encrypted <file>", errUsage)
	}

	return pdffile.With(args[0], opts, func(d *pdffile.Document) error {
		encrypted, err := d.IsEncrypted()
		if err != nil {
			return err
		}
		fmt.Fprintln(c.stdout, encrypted)
		return nil
	})
}

func (c *cli) extract(ctx context.Context, args []string, opts pdffile.Options) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: extract <file> <range> <target>", errUsage)
	}

	r, err := pdffile.ParseRange(args[1])
	if err != nil {
		return err
	}

	return pdffile.With(args[0], opts, func(d *pdffile.Document) error {
		target, err := d.ExtractPageRange(ctx, r, args[2])
		if err != nil {
			return err
		}
		fmt.Fprintln(c.stdout, target)
		return nil
	})
}

func (c *cli) split(ctx context.Context, args []string, opts pdffile.Options) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: split <file> <template>", errUsage)
	}

	return pdffile.With(args[0], opts, func(d *pdffile.Document) error {
		targets, err := d.ExtractPages(ctx, args[1])
		if err != nil {
			return err
		}
		for _, target := range targets {
			fmt.Fprintln(c.stdout, target)
		}
		return nil
	})
}

func (c *cli) append(ctx context.Context, args []string, opts pdffile.Options) error {
	fs := flag.NewFlagSet("append", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var passwords stringList
	fs.Var(&passwords, "input-password", "Password for the next input, in order (repeatable)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	if fs.NArg() < 3 {
		return fmt.Errorf("%w: append <target> <file> <inputs...>", errUsage)
	}

	target, source := fs.Arg(0), fs.Arg(1)

	var inputs []pdffile.Input
	for i, path := range fs.Args()[2:] {
		in := pdffile.Input{Path: path}
		if i < len(passwords) {
			in.Password = passwords[i]
		}
		inputs = append(inputs, in)
	}

	return pdffile.With(source, opts, func(d *pdffile.Document) error {
		result, err := d.AppendFiles(ctx, target, inputs...)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.stdout, result)
		return nil
	})
}

func (c *cli) decrypt(ctx context.Context, args []string, opts pdffile.Options) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: decrypt <file> [target]", errUsage)
	}

	return pdffile.With(args[0], opts, func(d *pdffile.Document) error {
		result, err := d.Decrypt(ctx, opts.Password, optional(args, 1))
		if err != nil {
			return err
		}
		fmt.Fprintln(c.stdout, result)
		return nil
	})
}

func (c *cli) encrypt(ctx context.Context, args []string, opts pdffile.Options) error {
	fs := flag.NewFlagSet("encrypt", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		user      = fs.String("user", "", "User password")
		owner     = fs.String("owner", "", "Owner password")
		keyLength = fs.Int("key-length", 256, "Key length: 40, 128 or 256")
	)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	if fs.NArg() < 1 || fs.NArg() > 2 {
		return fmt.Errorf("%w: encrypt [flags] <file> [target]", errUsage)
	}

	enc := pdffile.EncryptOptions{UserPassword: *user, OwnerPassword: *owner, KeyLength: *keyLength}

	return pdffile.With(fs.Arg(0), opts, func(d *pdffile.Document) error {
		result, err := d.Encrypt(ctx, enc, optional(fs.Args(), 1))
		if err != nil {
			return err
		}
		fmt.Fprintln(c.stdout, result)
		return nil
	})
}

func optional(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// stringList collects a repeatable flag in order.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}
