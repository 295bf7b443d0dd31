package sharelink

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/hookcard/internal/card"
	"github.com/hpungsan/hookcard/internal/errors"
	"github.com/hpungsan/hookcard/internal/export"
)

func fullCard() card.Card {
	return card.Card{
		Title:         "Patch notes ✨",
		Description:   "**Bold** \"quoted\" \\ back <#general> 日本語",
		URL:           "https://example.com/notes?a=1&b=2",
		Color:         "#ED4245",
		AuthorName:    "Dev Team",
		AuthorIconURL: "https://example.com/a.png",
		AuthorURL:     "https://example.com/team",
		ThumbnailURL:  "https://example.com/t.png",
		ImageURL:      "https://example.com/i.png",
		FooterText:    "footer",
		FooterIconURL: "https://example.com/f.png",
		Timestamp:     "2024-05-01T12:00:00.000Z",
		Fields: []card.Field{
			{Name: "one", Value: "1", Inline: true},
			{Name: "two", Value: "2"},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		card card.Card
	}{
		{"default", card.Default()},
		{"full", fullCard()},
		{"title only", func() card.Card { c := card.Default(); c.Title = "x"; return c }()},
		{"emoji fields", func() card.Card {
			c := card.Default()
			c.Fields = []card.Field{{Name: "🎮 Gamer", Value: "🎉", Inline: true}}
			return c
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := Encode(tt.card)
			got, err := Decode(token)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.card, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncode_URLSafe(t *testing.T) {
	token := Encode(fullCard())
	for _, r := range token {
		ok := (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
		if !ok {
			t.Fatalf("token contains %q, not URL-safe", r)
		}
	}
}

func TestEncode_OmitsDefaults(t *testing.T) {
	tests := []struct {
		name string
		card card.Card
		want string
	}{
		{"default card", card.Default(), `{}`},
		{"default color any case", card.Card{Color: "#5865f2"}, `{}`},
		{"malformed color", card.Card{Color: "blue"}, `{}`},
		{"title", card.Card{Title: "Hi", Color: card.DefaultColor}, `{"t":"Hi"}`},
		{"color", card.Card{Color: "#000000"}, `{"c":"#000000"}`},
		{"color without marker", card.Card{Color: "ff0000"}, `{"c":"#ff0000"}`},
		{"default color without marker", card.Card{Color: "5865F2"}, `{}`},
		{"fields", card.Card{Fields: []card.Field{{Name: "a", Value: "b"}}}, `{"f":[{"name":"a","value":"b","inline":false}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := base64.RawURLEncoding.DecodeString(Encode(tt.card))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))
		})
	}
}

func TestEncode_MarkupUnescaped(t *testing.T) {
	c := card.Default()
	c.Description = "see <#rules> & more"
	raw, err := base64.RawURLEncoding.DecodeString(Encode(c))
	require.NoError(t, err)
	assert.True(t, bytes.Contains(raw, []byte("<#rules> & more")), string(raw))
}

func TestDecode_EmptyRecord(t *testing.T) {
	got, err := Decode("e30")
	require.NoError(t, err)
	if !got.Equal(card.Default()) {
		t.Errorf("Decode(e30) = %+v, want Default()", got)
	}
}

func TestDecode_Failures(t *testing.T) {
	b64 := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "!!!not*base64"},
		{"not json", b64("hello world")},
		{"json array", b64(`[1,2,3]`)},
		{"json string", b64(`"text"`)},
		{"json null", b64(`null`)},
		{"truncated json", b64(`{"t":"x"`)},
		{"bad percent", b64(`%ZZ`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidToken), "err = %v", err)
		})
	}
}

func TestDecode_WrongShapesIgnored(t *testing.T) {
	token := base64.RawURLEncoding.EncodeToString([]byte(`{"t":5,"d":"ok","f":"nope","c":"#ABCDEF","zz":true}`))
	got, err := Decode(token)
	require.NoError(t, err)

	want := card.Default()
	want.Description = "ok"
	want.Color = "#ABCDEF"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_LegacyToken(t *testing.T) {
	// btoa(encodeURIComponent('{"t":"Hi there","c":"#ff0000"}'))
	legacy := base64.StdEncoding.EncodeToString([]byte(`%7B%22t%22%3A%22Hi%20there%22%2C%22c%22%3A%22%23ff0000%22%7D`))

	for _, token := range []string{legacy, strings.ReplaceAll(legacy, "+", " ")} {
		got, err := Decode(token)
		require.NoError(t, err)
		assert.Equal(t, "Hi there", got.Title)
		assert.Equal(t, "#ff0000", got.Color)
	}
}

func TestDecode_StandardAlphabet(t *testing.T) {
	c := fullCard()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]any{"t": c.Title, "d": "??>>"}))
	token := base64.StdEncoding.EncodeToString(buf.Bytes())

	got, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, c.Title, got.Title)
	assert.Equal(t, "??>>", got.Description)
}

func TestBuildURL(t *testing.T) {
	got, err := BuildURL("https://hookcard.app/", "abc-_")
	require.NoError(t, err)
	assert.Equal(t, "https://hookcard.app/?d=abc-_", got)

	got, err = BuildURL("https://hookcard.app/editor?theme=dark", "tok")
	require.NoError(t, err)
	assert.Equal(t, "https://hookcard.app/editor?d=tok&theme=dark", got)

	_, err = BuildURL("not a url", "tok")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"abc123", "abc123", false},
		{"  abc123\n", "abc123", false},
		{"https://hookcard.app/?d=abc123", "abc123", false},
		{"https://hookcard.app/?x=1&d=abc-_", "abc-_", false},
		{"https://hookcard.app/", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ExtractToken(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ExtractToken(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShareLinkRoundTrip(t *testing.T) {
	c := fullCard()
	link, err := BuildURL("https://hookcard.app/", Encode(c))
	require.NoError(t, err)

	token, err := ExtractToken(link)
	require.NoError(t, err)
	got, err := Decode(token)
	require.NoError(t, err)
	assert.True(t, got.Equal(c))
}

func TestQRCode(t *testing.T) {
	png, err := QRCode("https://hookcard.app/?d=e30", 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	small, err := QRCode("https://hookcard.app/?d=e30", 1)
	require.NoError(t, err)
	assert.NotEmpty(t, small)
}

func TestEncode_ColorMatchesWirePayload(t *testing.T) {
	for _, color := range []string{"#57F287", "57f287", "ff0000", "#5865F2", "5865f2", "blue", ""} {
		t.Run(color, func(t *testing.T) {
			c := card.Card{Title: "x", Color: color}
			decoded, err := Decode(Encode(c))
			require.NoError(t, err)

			want := export.ToWirePayload(c).Embeds[0].Color
			got := export.ToWirePayload(decoded).Embeds[0].Color
			if want == nil {
				// Unparseable colors fall back to the default on decode
				require.NotNil(t, got)
				assert.Equal(t, 5793266, *got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *want, *got)
		})
	}
}
