package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/hookcard/internal/card"
	"github.com/hpungsan/hookcard/internal/config"
	"github.com/hpungsan/hookcard/internal/export"
	"github.com/hpungsan/hookcard/internal/sharelink"
	"github.com/hpungsan/hookcard/internal/webhook"
)

const testWebhook = "https://discord.com/api/webhooks/123456789012345678/AbCdEf-123_xyz"

type fakeGenerator struct {
	reply  string
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, _, userText string) (string, error) {
	f.prompt = userText
	return f.reply, nil
}

type fakeTransport struct {
	resp   webhook.Response
	bodies []string
}

func (f *fakeTransport) Post(_ context.Context, _ string, body []byte) (webhook.Response, error) {
	f.bodies = append(f.bodies, string(body))
	return f.resp, nil
}

// testDeps returns deps wired to fakes; the config allows temp dirs.
func testDeps() (*deps, *fakeGenerator, *fakeTransport) {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true
	gen := &fakeGenerator{reply: `{"title":"Drafted"}`}
	tr := &fakeTransport{resp: webhook.Response{Status: 204}}
	return &deps{
		cfg:       cfg,
		gen:       gen,
		transport: tr,
		logger:    zap.NewNop(),
		level:     zap.NewAtomicLevel(),
	}, gen, tr
}

// runCLI runs args with stdin and returns stdout and stderr.
func runCLI(t *testing.T, d *deps, stdin string, args ...string) (string, string, error) {
	t.Helper()
	app := newCLIApp(d)
	var stdout, stderr bytes.Buffer
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"hookcard"}, args...))
	return stdout.String(), stderr.String(), err
}

func exitMessage(err error) string {
	if ec, ok := err.(cli.ExitCoder); ok {
		return ec.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

const yamlCard = `title: Weekly digest
description: "Highlights from **this week**"
color: "#FEE75C"
fields:
  - name: Merged
    value: "12"
    inline: true
`

// TestCLIShareLoad tests that share output loads back to the same card.
func TestCLIShareLoad(t *testing.T) {
	d, _, _ := testDeps()

	out, _, err := runCLI(t, d, yamlCard, "share")
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}
	var shared struct {
		Token string `json:"token"`
		URL   string `json:"url"`
	}
	if err := json.Unmarshal([]byte(out), &shared); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if !strings.HasPrefix(shared.URL, config.DefaultShareBaseURL+"?d=") {
		t.Errorf("url = %q", shared.URL)
	}

	out, _, err = runCLI(t, d, "", "load", shared.URL)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	var loaded card.Card
	if err := json.Unmarshal([]byte(out), &loaded); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	want, err := card.ParseDocument([]byte(yamlCard))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if diff := cmp.Diff(want, loaded); diff != "" {
		t.Errorf("loaded card mismatch (-want +got):\n%s", diff)
	}
}

// TestCLILoad_FromStdin tests load with the token piped in.
func TestCLILoad_FromStdin(t *testing.T) {
	d, _, _ := testDeps()
	token := sharelink.Encode(card.Card{Title: "piped", Color: card.DefaultColor})

	out, _, err := runCLI(t, d, token+"\n", "load")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !strings.Contains(out, `"title": "piped"`) {
		t.Errorf("output = %s", out)
	}
}

// TestCLIShare_FileAndQR tests --file and --qr.
func TestCLIShare_FileAndQR(t *testing.T) {
	d, _, _ := testDeps()
	dir := t.TempDir()
	src := filepath.Join(dir, "card.yaml")
	if err := os.WriteFile(src, []byte(yamlCard), 0600); err != nil {
		t.Fatal(err)
	}
	qr := filepath.Join(dir, "card.png")

	if _, _, err := runCLI(t, d, "", "share", "--file", src, "--qr", qr); err != nil {
		t.Fatalf("share failed: %v", err)
	}
	data, err := os.ReadFile(qr)
	if err != nil {
		t.Fatalf("qr not written: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("qr file is not a PNG")
	}
}

// TestCLIQR tests the qr command writes a PNG to stdout.
func TestCLIQR(t *testing.T) {
	d, _, _ := testDeps()
	token := sharelink.Encode(card.Card{Title: "qr", Color: card.DefaultColor})

	out, _, err := runCLI(t, d, "", "qr", "--size", "96", token)
	if err != nil {
		t.Fatalf("qr failed: %v", err)
	}
	if !strings.HasPrefix(out, "\x89PNG") {
		t.Error("stdout is not a PNG")
	}
}

// TestCLIExport tests the export formats.
func TestCLIExport(t *testing.T) {
	d, _, _ := testDeps()

	t.Run("payload", func(t *testing.T) {
		out, _, err := runCLI(t, d, `{"title":"Hi"}`, "export", "--format", "payload")
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if out != `{"embeds":[{"title":"Hi","color":5793266}]}`+"\n" {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("curl", func(t *testing.T) {
		out, _, err := runCLI(t, d, `{"title":"It's done"}`, "export", "--format", "curl", "--webhook-url", testWebhook)
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !strings.HasPrefix(out, "curl -X POST '"+testWebhook+"'") {
			t.Errorf("output = %q", out)
		}
		if !strings.Contains(out, `It'\''s done`) {
			t.Errorf("apostrophe not shell-quoted: %q", out)
		}
	})

	t.Run("warnings go to stderr", func(t *testing.T) {
		long := `{"title":"` + strings.Repeat("t", 300) + `"}`
		out, errOut, err := runCLI(t, d, long, "export")
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !strings.Contains(errOut, "warning: title exceeds 256 characters") {
			t.Errorf("stderr = %q", errOut)
		}
		if strings.Contains(out, "warning") {
			t.Errorf("stdout should only carry the export: %q", out)
		}
	})

	t.Run("json result", func(t *testing.T) {
		out, _, err := runCLI(t, d, `{"title":"Hi"}`, "export", "--json")
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		var result struct {
			Format  string         `json:"format"`
			Payload export.Payload `json:"payload"`
		}
		if err := json.Unmarshal([]byte(out), &result); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if result.Format != "json" || len(result.Payload.Embeds) != 1 {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("out path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "send.sh")
		out, errOut, err := runCLI(t, d, `{"title":"Hi"}`, "export", "--format", "curl", "--out", path)
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("export not written: %v", err)
		}
		if string(data) != out {
			t.Errorf("file %q != stdout %q", data, out)
		}
		if !strings.Contains(errOut, "wrote "+path) {
			t.Errorf("stderr = %q", errOut)
		}
	})
}

// TestCLISend tests the send command against a fake transport.
func TestCLISend(t *testing.T) {
	t.Run("card", func(t *testing.T) {
		d, _, tr := testDeps()
		out, _, err := runCLI(t, d, "title: Deployed\n", "send", "--webhook-url", testWebhook)
		if err != nil {
			t.Fatalf("send failed: %v", err)
		}
		if !strings.Contains(out, `"success": true`) {
			t.Errorf("output = %s", out)
		}
		if len(tr.bodies) != 1 || tr.bodies[0] != `{"embeds":[{"title":"Deployed","color":5793266}]}` {
			t.Errorf("bodies = %v", tr.bodies)
		}
	})

	t.Run("raw payload", func(t *testing.T) {
		d, _, tr := testDeps()
		_, _, err := runCLI(t, d, `{"content":"hello"}`, "send", "--payload", "--webhook-url", testWebhook)
		if err != nil {
			t.Fatalf("send failed: %v", err)
		}
		if len(tr.bodies) != 1 || tr.bodies[0] != `{"content":"hello"}` {
			t.Errorf("bodies = %v", tr.bodies)
		}
	})

	t.Run("raw payload file", func(t *testing.T) {
		d, _, tr := testDeps()
		path := filepath.Join(t.TempDir(), "payload.json")
		raw := `{"content": "from disk"}`
		if err := os.WriteFile(path, []byte(raw), 0600); err != nil {
			t.Fatal(err)
		}
		_, _, err := runCLI(t, d, "", "send", "--payload", "--file", path, "--webhook-url", testWebhook)
		if err != nil {
			t.Fatalf("send failed: %v", err)
		}
		if len(tr.bodies) != 1 || tr.bodies[0] != raw {
			t.Errorf("bodies = %v", tr.bodies)
		}

		yamlPath := filepath.Join(t.TempDir(), "payload.yaml")
		if err := os.WriteFile(yamlPath, []byte("content: x\n"), 0600); err != nil {
			t.Fatal(err)
		}
		_, _, err = runCLI(t, d, "", "send", "--payload", "--file", yamlPath, "--webhook-url", testWebhook)
		if !strings.Contains(exitMessage(err), "[INVALID_REQUEST]") {
			t.Errorf("err = %v, want INVALID_REQUEST", err)
		}
	})

	t.Run("invalid endpoint", func(t *testing.T) {
		d, _, tr := testDeps()
		_, _, err := runCLI(t, d, "title: x\n", "send", "--webhook-url", "https://example.com/hook")
		if !strings.Contains(exitMessage(err), "[INVALID_ENDPOINT]") {
			t.Errorf("err = %v, want INVALID_ENDPOINT", err)
		}
		if len(tr.bodies) != 0 {
			t.Error("transport should not be called")
		}
	})

	t.Run("over limit", func(t *testing.T) {
		d, _, tr := testDeps()
		long := `{"description":"` + strings.Repeat("d", 4097) + `"}`
		_, _, err := runCLI(t, d, long, "send", "--webhook-url", testWebhook)
		if !strings.Contains(exitMessage(err), "[CARD_INVALID]") {
			t.Errorf("err = %v, want CARD_INVALID", err)
		}

		if _, _, err := runCLI(t, d, long, "send", "--force", "--webhook-url", testWebhook); err != nil {
			t.Fatalf("forced send failed: %v", err)
		}
		if len(tr.bodies) != 1 {
			t.Errorf("bodies = %d, want 1", len(tr.bodies))
		}
	})
}

// TestCLIGenerate tests prompts from args and stdin.
func TestCLIGenerate(t *testing.T) {
	d, gen, _ := testDeps()

	out, _, err := runCLI(t, d, "", "generate", "release", "notes", "for", "v2")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if gen.prompt != "release notes for v2" {
		t.Errorf("prompt = %q", gen.prompt)
	}
	if !strings.Contains(out, `"title": "Drafted"`) {
		t.Errorf("output = %s", out)
	}

	if _, _, err := runCLI(t, d, "a server rules card\n", "generate"); err != nil {
		t.Fatalf("generate from stdin failed: %v", err)
	}
	if gen.prompt != "a server rules card" {
		t.Errorf("prompt = %q", gen.prompt)
	}
}

// TestCLILint tests that lint prints the result and fails on problems.
func TestCLILint(t *testing.T) {
	d, _, _ := testDeps()

	out, _, err := runCLI(t, d, yamlCard, "lint")
	if err != nil {
		t.Fatalf("lint failed: %v", err)
	}
	if !strings.Contains(out, `"valid": true`) {
		t.Errorf("output = %s", out)
	}

	out, _, err = runCLI(t, d, `{"color":"blue"}`, "lint")
	if !strings.Contains(exitMessage(err), "[CARD_INVALID]") {
		t.Errorf("err = %v, want CARD_INVALID", err)
	}
	if !strings.Contains(out, `"valid": false`) {
		t.Errorf("output = %s", out)
	}
}

// TestCLITemplates tests listing and instantiating templates.
func TestCLITemplates(t *testing.T) {
	d, _, _ := testDeps()

	out, _, err := runCLI(t, d, "", "templates")
	if err != nil {
		t.Fatalf("templates failed: %v", err)
	}
	var list struct {
		Templates []struct {
			Slug string `json:"slug"`
		} `json:"templates"`
	}
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if len(list.Templates) != 10 {
		t.Fatalf("templates = %d, want 10", len(list.Templates))
	}

	out, _, err = runCLI(t, d, "", "templates", list.Templates[0].Slug)
	if err != nil {
		t.Fatalf("templates %s failed: %v", list.Templates[0].Slug, err)
	}
	var c card.Card
	if err := json.Unmarshal([]byte(out), &c); err != nil {
		t.Fatalf("failed to parse card: %v", err)
	}
	if c.Timestamp == card.TimestampNow {
		t.Error("timestamp sentinel should be resolved")
	}

	_, _, err = runCLI(t, d, "", "templates", "does-not-exist")
	if !strings.Contains(exitMessage(err), "[NOT_FOUND]") {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

// TestCLIErrorHandling tests error handling in CLI commands.
func TestCLIErrorHandling(t *testing.T) {
	d, _, _ := testDeps()

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"empty stdin", "", []string{"share"}, "[INVALID_REQUEST]"},
		{"stdin not a mapping", "- a\n- b\n", []string{"share"}, "[INVALID_REQUEST]"},
		{"missing file", "", []string{"lint", "--file", "/nonexistent/card.json"}, "[FILE_NOT_FOUND]"},
		{"bad token", "", []string{"load", "%%%"}, "[INVALID_TOKEN]"},
		{"bad format", `{"title":"x"}`, []string{"export", "--format", "xml"}, "[INVALID_REQUEST]"},
		{"send without url", `{"title":"x"}`, []string{"send"}, "[INVALID_REQUEST]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := runCLI(t, d, tc.stdin, tc.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if msg := exitMessage(err); !strings.HasPrefix(msg, tc.want) {
				t.Errorf("error = %q, want prefix %q", msg, tc.want)
			}
		})
	}
}

// TestCLIVerbose tests that --verbose lowers the log level.
func TestCLIVerbose(t *testing.T) {
	d, _, _ := testDeps()
	if _, _, err := runCLI(t, d, "", "--verbose", "templates"); err != nil {
		t.Fatalf("templates failed: %v", err)
	}
	if d.level.Level() != zap.DebugLevel {
		t.Errorf("level = %v, want debug", d.level.Level())
	}
}

// TestIsCLIMode tests the isCLIMode function.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{"no args", []string{"hookcard"}, false},
		{"share command", []string{"hookcard", "share"}, true},
		{"serve command", []string{"hookcard", "serve"}, true},
		{"help flag", []string{"hookcard", "--help"}, true},
		{"version flag", []string{"hookcard", "--version"}, true},
		{"short help flag", []string{"hookcard", "-h"}, true},
		{"short version flag", []string{"hookcard", "-v"}, true},
		{"verbose flag", []string{"hookcard", "--verbose", "lint"}, true},
		{"unknown arg defaults to MCP", []string{"hookcard", "--unknown"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Save and restore os.Args
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			if result := isCLIMode(); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestIsHelpOrVersion tests the isHelpOrVersion function.
func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{"no args", []string{"hookcard"}, false},
		{"help flag", []string{"hookcard", "--help"}, true},
		{"short help flag", []string{"hookcard", "-h"}, true},
		{"version flag", []string{"hookcard", "--version"}, true},
		{"short version flag", []string{"hookcard", "-v"}, true},
		{"help subcommand", []string{"hookcard", "help"}, true},
		{"share command is not help", []string{"hookcard", "share"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			if result := isHelpOrVersion(); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestReadStdinWithLimit tests the readStdin function respects size limits.
func TestReadStdinWithLimit(t *testing.T) {
	t.Run("within limit", func(t *testing.T) {
		result, err := readStdin(strings.NewReader("  small content\n"), 1000)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if string(result) != "small content" {
			t.Errorf("expected %q, got %q", "small content", result)
		}
	})

	t.Run("exceeds limit", func(t *testing.T) {
		// Limit is 50 bytes, content is 100
		_, err := readStdin(strings.NewReader(strings.Repeat("x", 100)), 50)
		if err == nil {
			t.Error("expected error for content exceeding limit, got nil")
		}
	})
}

// TestStdinHasData tests terminal detection on pipes and readers.
func TestStdinHasData(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	if !stdinHasData(r) {
		t.Error("pipe should count as piped input")
	}
	if !stdinHasData(strings.NewReader("")) {
		t.Error("in-memory reader should count as piped input")
	}
}
