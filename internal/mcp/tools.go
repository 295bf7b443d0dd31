package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/hookcard/internal/export"
	"github.com/hpungsan/hookcard/internal/sharelink"
)

const (
	cardDescription = "Card document: title, description, url, color (#RRGGBB), authorName, authorIconUrl, " +
		"authorUrl, thumbnailUrl, imageUrl, footerText, footerIconUrl, timestamp (ISO-8601) and " +
		"fields [{name, value, inline}]. Missing keys take their defaults."
	cardPathDescription = "Path to a JSON or YAML card document (alternative to card)."
)

var shareToolDef = mcp.NewTool("card_share",
	mcp.WithDescription("Encode a card into a share token and link. Optionally write a PNG QR code of the link."),
	mcp.WithObject("card", mcp.Description(cardDescription)),
	mcp.WithString("card_path", mcp.Description(cardPathDescription)),
	mcp.WithString("base_url", mcp.Description("Share page URL (default: share_base_url from config).")),
	mcp.WithString("qr_path", mcp.Description("Write a PNG QR code of the link to this .png path.")),
	mcp.WithNumber("qr_size",
		mcp.Description("QR code edge in pixels."),
		mcp.Min(sharelink.MinQRSize),
		mcp.Max(sharelink.MaxQRSize),
	),
)

var loadToolDef = mcp.NewTool("card_load",
	mcp.WithDescription("Decode a share token or share link back into a card."),
	mcp.WithString("token", mcp.Required(), mcp.Description("Bare token or full share link with a d= parameter.")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var exportToolDef = mcp.NewTool("card_export",
	mcp.WithDescription("Render a card as pretty JSON, a curl command or a compact webhook payload. "+
		"Lint problems are returned as warnings."),
	mcp.WithObject("card", mcp.Description(cardDescription)),
	mcp.WithString("card_path", mcp.Description(cardPathDescription)),
	mcp.WithString("format",
		mcp.Description("Output format (default: json)."),
		mcp.Enum(export.Formats...),
	),
	mcp.WithString("webhook_url", mcp.Description("Endpoint to put in the curl command (default: placeholder).")),
	mcp.WithString("path", mcp.Description("Write the output to this .json, .sh or .txt path.")),
	mcp.WithBoolean("save", mcp.Description("Write the output under ~/.hookcard/exports when path is empty.")),
)

var sendToolDef = mcp.NewTool("card_send",
	mcp.WithDescription("Post a card, or a raw webhook payload, to a Discord webhook URL."),
	mcp.WithString("webhook_url", mcp.Required(), mcp.Description("https://discord.com/api/webhooks/<id>/<token>")),
	mcp.WithObject("card", mcp.Description(cardDescription)),
	mcp.WithString("card_path", mcp.Description(cardPathDescription)),
	mcp.WithObject("payload", mcp.Description("Raw webhook payload, sent verbatim (alternative to card).")),
	mcp.WithBoolean("force", mcp.Description("Send a card even when it exceeds Discord's limits.")),
	mcp.WithDestructiveHintAnnotation(false),
	mcp.WithOpenWorldHintAnnotation(true),
)

var generateToolDef = mcp.NewTool("card_generate",
	mcp.WithDescription("Draft a card from a plain-language description using the configured model."),
	mcp.WithString("prompt", mcp.Required(), mcp.Description("What the embed should say and look like.")),
	mcp.WithOpenWorldHintAnnotation(true),
)

var lintToolDef = mcp.NewTool("card_lint",
	mcp.WithDescription("Check a card against Discord's embed limits."),
	mcp.WithObject("card", mcp.Description(cardDescription)),
	mcp.WithString("card_path", mcp.Description(cardPathDescription)),
	mcp.WithReadOnlyHintAnnotation(true),
)

var templatesToolDef = mcp.NewTool("card_templates",
	mcp.WithDescription("List the built-in starter templates, or fetch one as a ready-to-edit card."),
	mcp.WithString("name", mcp.Description("Template name or slug. Omit to list all templates.")),
	mcp.WithReadOnlyHintAnnotation(true),
)
