package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/hookcard/internal/card"
	"github.com/hpungsan/hookcard/internal/config"
	"github.com/hpungsan/hookcard/internal/errors"
	"github.com/hpungsan/hookcard/internal/export"
	"github.com/hpungsan/hookcard/internal/llm"
	"github.com/hpungsan/hookcard/internal/ops"
	"github.com/hpungsan/hookcard/internal/sharelink"
	"github.com/hpungsan/hookcard/internal/web"
	"github.com/hpungsan/hookcard/internal/webhook"
)

// maxStdinBytes bounds card documents, payloads and prompts read from stdin.
const maxStdinBytes = ops.MaxCardFileBytes

// defaultServeAddr keeps the API on loopback unless asked otherwise.
const defaultServeAddr = "127.0.0.1:8787"

// deps holds what the commands need; main builds it once.
type deps struct {
	cfg       *config.Config
	gen       llm.TextGenerator
	transport webhook.Transport
	logger    *zap.Logger
	level     zap.AtomicLevel
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(d *deps) *cli.App {
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	app := &cli.App{
		Name:    "hookcard",
		Usage:   "Discord embed cards: share links, exports, webhooks and AI drafts",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "Log debug output to stderr"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				d.level.SetLevel(zap.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			shareCmd(d),
			loadCmd(),
			qrCmd(d),
			exportCmd(d),
			sendCmd(d),
			generateCmd(d),
			lintCmd(d),
			templatesCmd(),
			serveCmd(d),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// fileFlag names a card document on disk; without it the card is read from stdin.
var fileFlag = &cli.StringFlag{
	Name:    "file",
	Aliases: []string{"f"},
	Usage:   "Card document (.json, .yaml, .yml); default: read from stdin",
}

// shareCmd creates the share command.
func shareCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "share",
		Usage: "Encode a card into a share token and link",
		Flags: []cli.Flag{
			fileFlag,
			&cli.StringFlag{Name: "base-url", Usage: "Share page URL (default: share_base_url from config)"},
			&cli.StringFlag{Name: "qr", Usage: "Also write a PNG QR code of the link to this path"},
			&cli.IntFlag{Name: "qr-size", Value: sharelink.DefaultQRSize, Usage: "QR code edge in pixels"},
		},
		Action: func(c *cli.Context) error {
			cd, err := readCard(c, d.cfg)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Share(d.cfg, ops.ShareInput{
				Card:    cd,
				BaseURL: c.String("base-url"),
				QRPath:  c.String("qr"),
				QRSize:  c.Int("qr-size"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// loadCmd creates the load command.
func loadCmd() *cli.Command {
	return &cli.Command{
		Name:      "load",
		Usage:     "Decode a share token or link back into a card",
		ArgsUsage: "[token|link]",
		Action: func(c *cli.Context) error {
			token, err := argOrStdin(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Load(ops.LoadInput{Token: token})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output.Card)
		},
	}
}

// qrCmd creates the qr command.
func qrCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "qr",
		Usage:     "Write a PNG QR code of a share link to stdout",
		ArgsUsage: "[token|link]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "base-url", Usage: "Share page URL (default: share_base_url from config)"},
			&cli.IntFlag{Name: "size", Value: sharelink.DefaultQRSize, Usage: "QR code edge in pixels"},
		},
		Action: func(c *cli.Context) error {
			token, err := argOrStdin(c)
			if err != nil {
				return outputError(err)
			}

			png, err := ops.QR(d.cfg, ops.QRInput{
				Token:   token,
				BaseURL: c.String("base-url"),
				Size:    c.Int("size"),
			})
			if err != nil {
				return outputError(err)
			}

			_, err = c.App.Writer.Write(png)
			return err
		},
	}
}

// exportCmd creates the export command.
func exportCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Render a card as JSON, a curl command or a compact payload",
		Flags: []cli.Flag{
			fileFlag,
			&cli.StringFlag{Name: "format", Value: export.FormatJSON, Usage: "Output format: " + strings.Join(export.Formats, "|")},
			&cli.StringFlag{Name: "webhook-url", EnvVars: []string{"HOOKCARD_WEBHOOK_URL"}, Usage: "Endpoint for the curl command"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Also write the output to this path"},
			&cli.BoolFlag{Name: "save", Usage: "Also write the output under ~/.hookcard/exports"},
			&cli.BoolFlag{Name: "json", Usage: "Print the full result (text, payload, warnings) as JSON"},
		},
		Action: func(c *cli.Context) error {
			cd, err := readCard(c, d.cfg)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Export(d.cfg, ops.ExportInput{
				Card:     cd,
				Format:   c.String("format"),
				Endpoint: c.String("webhook-url"),
				Path:     c.String("out"),
				Save:     c.Bool("save"),
			})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("json") {
				return outputJSON(c.App.Writer, output)
			}
			for _, w := range output.Warnings {
				fmt.Fprintf(c.App.ErrWriter, "warning: %s\n", w)
			}
			if output.Path != "" {
				fmt.Fprintf(c.App.ErrWriter, "wrote %s\n", output.Path)
			}
			_, err = fmt.Fprintln(c.App.Writer, output.Text)
			return err
		},
	}
}

// sendCmd creates the send command.
func sendCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "send",
		Usage: "Post a card (or with --payload, a raw webhook payload) to a Discord webhook",
		Flags: []cli.Flag{
			fileFlag,
			&cli.StringFlag{Name: "webhook-url", EnvVars: []string{"HOOKCARD_WEBHOOK_URL"}, Usage: "Discord webhook URL"},
			&cli.BoolFlag{Name: "payload", Usage: "Treat the input as a raw webhook payload and send it verbatim"},
			&cli.BoolFlag{Name: "force", Usage: "Send even when the card exceeds Discord's limits"},
		},
		Action: func(c *cli.Context) error {
			input := ops.SendInput{
				Endpoint: c.String("webhook-url"),
				Force:    c.Bool("force"),
			}

			if c.Bool("payload") {
				data, err := readFileOrStdin(c, d.cfg)
				if err != nil {
					return outputError(err)
				}
				input.Payload = data
			} else {
				cd, err := readCard(c, d.cfg)
				if err != nil {
					return outputError(err)
				}
				input.Card = &cd
			}

			output, err := ops.Send(c.Context, d.transport, d.cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// generateCmd creates the generate command.
func generateCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Draft a card from a plain-language description",
		ArgsUsage: "[prompt...]",
		Action: func(c *cli.Context) error {
			prompt := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(prompt) == "" {
				data, err := readStdinDoc(c.App.Reader)
				if err != nil {
					return outputError(err)
				}
				prompt = string(data)
			}

			output, err := ops.Generate(c.Context, d.gen, d.cfg, ops.GenerateInput{Prompt: prompt})
			if err != nil {
				return outputError(err)
			}

			for _, w := range output.Warnings {
				fmt.Fprintf(c.App.ErrWriter, "warning: %s\n", w)
			}
			return outputJSON(c.App.Writer, output.Card)
		},
	}
}

// lintCmd creates the lint command.
func lintCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "lint",
		Usage: "Check a card against Discord's embed limits",
		Flags: []cli.Flag{fileFlag},
		Action: func(c *cli.Context) error {
			cd, err := readCard(c, d.cfg)
			if err != nil {
				return outputError(err)
			}

			result := ops.Lint(d.cfg, ops.LintInput{Card: cd})
			if err := outputJSON(c.App.Writer, result); err != nil {
				return err
			}
			if !result.Valid {
				return outputError(errors.NewCardInvalid(result.Problems))
			}
			return nil
		},
	}
}

// templatesCmd creates the templates command.
func templatesCmd() *cli.Command {
	return &cli.Command{
		Name:      "templates",
		Usage:     "List starter templates, or print one as a card",
		ArgsUsage: "[name]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputJSON(c.App.Writer, ops.ListTemplates())
			}

			output, err := ops.GetTemplate(ops.GetTemplateInput{Name: strings.Join(c.Args().Slice(), " ")})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output.Card)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the card HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: defaultServeAddr, EnvVars: []string{"HOOKCARD_ADDR"}, Usage: "Listen address"},
		},
		Action: func(c *cli.Context) error {
			h := web.NewHandlers(d.cfg, d.gen, d.transport, d.logger, Version)
			if err := web.Run(c.Context, web.NewServer(h, c.String("addr")), d.logger); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if hErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", hErr.Code, hErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// readCard loads the card from --file, or parses a JSON or YAML document from stdin.
func readCard(c *cli.Context, cfg *config.Config) (card.Card, error) {
	if path := c.String("file"); path != "" {
		return ops.ReadCardFile(cfg, path)
	}

	data, err := readStdinDoc(c.App.Reader)
	if err != nil {
		return card.Card{}, err
	}
	cd, err := card.ParseDocument(data)
	if err != nil {
		return card.Card{}, errors.NewInvalidRequest(err.Error())
	}
	return cd, nil
}

// readFileOrStdin returns the raw bytes of --file or stdin.
func readFileOrStdin(c *cli.Context, cfg *config.Config) ([]byte, error) {
	if path := c.String("file"); path != "" {
		return ops.ReadPayloadFile(cfg, path)
	}
	return readStdinDoc(c.App.Reader)
}

// argOrStdin returns the first argument, or stdin when there is none.
func argOrStdin(c *cli.Context) (string, error) {
	if c.NArg() > 0 {
		return c.Args().First(), nil
	}
	data, err := readStdinDoc(c.App.Reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readStdinDoc reads a non-empty document from r, refusing an interactive terminal.
func readStdinDoc(r io.Reader) ([]byte, error) {
	if !stdinHasData(r) {
		return nil, errors.NewInvalidRequest("input must be piped via stdin or given with --file")
	}
	data, err := readStdin(r, maxStdinBytes)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.NewInvalidRequest("input is empty")
	}
	return data, nil
}

// stdinHasData returns true unless r is a terminal.
func stdinHasData(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads at most limit bytes from r, trimmed.
func readStdin(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if int64(len(data)) > limit {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("input exceeds %d bytes", limit))
	}
	return bytes.TrimSpace(data), nil
}
