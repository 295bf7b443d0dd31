package ops

import (
	"github.com/hpungsan/hookcard/internal/card"
	"github.com/hpungsan/hookcard/internal/config"
	"github.com/hpungsan/hookcard/internal/errors"
	"github.com/hpungsan/hookcard/internal/sharelink"
)

// ShareInput contains parameters for the Share operation.
type ShareInput struct {
	Card    card.Card
	BaseURL string // optional, default: cfg.ShareBaseURL
	QRPath  string // optional, also write a PNG QR code of the link here
	QRSize  int    // optional, default: sharelink.DefaultQRSize
}

// ShareOutput contains the result of the Share operation.
type ShareOutput struct {
	Token  string `json:"token"`
	URL    string `json:"url"`
	QRPath string `json:"qr_path,omitempty"`
}

// Share encodes a card into a token and a share link.
func Share(cfg *config.Config, input ShareInput) (*ShareOutput, error) {
	token := sharelink.Encode(input.Card)
	link, err := sharelink.BuildURL(shareBase(cfg, input.BaseURL), token)
	if err != nil {
		return nil, err
	}

	out := &ShareOutput{Token: token, URL: link}
	if input.QRPath != "" {
		png, err := sharelink.QRCode(link, input.QRSize)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		written, err := saveOutput(cfg, input.QRPath, png, QRFile)
		if err != nil {
			return nil, err
		}
		out.QRPath = written
	}

	return out, nil
}

// QRInput contains parameters for the QR operation.
type QRInput struct {
	Token   string // bare token or full share link
	BaseURL string // optional, default: cfg.ShareBaseURL
	Size    int    // optional, default: sharelink.DefaultQRSize
}

// QR renders the share link for a token as a PNG. The token must decode,
// so a QR code never points at a broken link.
func QR(cfg *config.Config, input QRInput) ([]byte, error) {
	token, err := sharelink.ExtractToken(input.Token)
	if err != nil {
		return nil, err
	}
	if _, err := sharelink.Decode(token); err != nil {
		return nil, err
	}

	link, err := sharelink.BuildURL(shareBase(cfg, input.BaseURL), token)
	if err != nil {
		return nil, err
	}

	png, err := sharelink.QRCode(link, input.Size)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return png, nil
}

func shareBase(cfg *config.Config, override string) string {
	if override != "" {
		return override
	}
	if cfg != nil && cfg.ShareBaseURL != "" {
		return cfg.ShareBaseURL
	}
	return config.DefaultShareBaseURL
}
