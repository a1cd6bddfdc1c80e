package twilio

import (
	"context"
	"fmt"
	"strings"

	"github.com/Daskott/swiftly/colors"
	"github.com/Daskott/swiftly/server/logger"
	"github.com/Daskott/swiftly/shared"
	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

const (
	SMS_CHANNEL      = "sms"
	WHATSAPP_CHANNEL = "whatsapp"
)

var logg = logger.NewLogger()

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

type ClientWrapper struct {
	api     messageCreator
	config  shared.TwilioConfig
	devMode bool
}

// NewClient returns a twilio backed messaging gateway. In devMode messages are
// logged instead of being sent.
func NewClient(config shared.TwilioConfig, devMode bool) *ClientWrapper {
	client := twilio.NewRestClientWithParams(twilio.RestClientParams{
		Username: config.AccountSid,
		Password: config.AuthToken,
	})

	return &ClientWrapper{
		api:     client.ApiV2010,
		config:  config,
		devMode: devMode,
	}
}

// SendMessage delivers msg to the phone number 'to' & returns the twilio message sid.
func (cw *ClientWrapper) SendMessage(ctx context.Context, to, msg string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &openapi.CreateMessageParams{}
	if cw.config.MessagingServiceSid != "" {
		params.SetMessagingServiceSid(cw.config.MessagingServiceSid)
	} else {
		params.SetFrom(cw.address(cw.config.From))
	}
	params.SetTo(cw.address(to))
	params.SetBody(msg)

	if cw.devMode {
		sid := "SM" + strings.ReplaceAll(uuid.NewString(), "-", "")
		logg.Infof(colors.Blue("[twilio dev] ")+"to=%v sid=%v\n%v", *params.To, sid, msg)
		return sid, nil
	}

	resp, err := cw.api.CreateMessage(params)
	if err != nil {
		return "", err
	}

	if resp.ErrorCode != nil {
		errMsg := ""
		if resp.ErrorMessage != nil {
			errMsg = *resp.ErrorMessage
		}
		return "", fmt.Errorf("twilio error %v: %v", *resp.ErrorCode, errMsg)
	}

	if resp.Sid == nil {
		return "", fmt.Errorf("twilio returned no message sid for %v", to)
	}

	return *resp.Sid, nil
}

// address prefixes number with the configured channel, e.g. "whatsapp:+27111"
func (cw *ClientWrapper) address(number string) string {
	number = strings.TrimSpace(number)
	if cw.config.Channel != WHATSAPP_CHANNEL || strings.HasPrefix(number, WHATSAPP_CHANNEL+":") {
		return number
	}

	return WHATSAPP_CHANNEL + ":" + number
}
