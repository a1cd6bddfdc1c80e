package twilio

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Daskott/swiftly/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeMessageCreator struct {
	params []*openapi.CreateMessageParams
	resp   *openapi.ApiV2010Message
	err    error
}

func (f *fakeMessageCreator) CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	f.params = append(f.params, params)
	return f.resp, f.err
}

func stringPtr(s string) *string { return &s }
func intPtr(i int) *int          { return &i }

func TestSendMessage(t *testing.T) {
	cases := []struct {
		description  string
		config       shared.TwilioConfig
		resp         *openapi.ApiV2010Message
		err          error
		expectedSid  string
		expectedTo   string
		expectedFrom string
		expectErr    bool
	}{
		{
			description:  "Should prefix whatsapp addresses",
			config:       shared.TwilioConfig{From: "+14155238886", Channel: WHATSAPP_CHANNEL},
			resp:         &openapi.ApiV2010Message{Sid: stringPtr("SM1")},
			expectedSid:  "SM1",
			expectedTo:   "whatsapp:+27111",
			expectedFrom: "whatsapp:+14155238886",
		},
		{
			description:  "Should send plain sms addresses",
			config:       shared.TwilioConfig{From: "+14155238886", Channel: SMS_CHANNEL},
			resp:         &openapi.ApiV2010Message{Sid: stringPtr("SM2")},
			expectedSid:  "SM2",
			expectedTo:   "+27111",
			expectedFrom: "+14155238886",
		},
		{
			description: "Should return the api error",
			config:      shared.TwilioConfig{From: "+14155238886"},
			err:         errors.New("invalid 'To' phone number"),
			expectedTo:  "+27111",
			expectErr:   true,
		},
		{
			description: "Should treat a reported error code as a failure",
			config:      shared.TwilioConfig{From: "+14155238886"},
			resp:        &openapi.ApiV2010Message{Sid: stringPtr("SM3"), ErrorCode: intPtr(21610), ErrorMessage: stringPtr("unsubscribed recipient")},
			expectedTo:  "+27111",
			expectErr:   true,
		},
	}

	for _, tcase := range cases {
		t.Run(tcase.description, func(t *testing.T) {
			fake := &fakeMessageCreator{resp: tcase.resp, err: tcase.err}
			client := &ClientWrapper{api: fake, config: tcase.config}

			sid, err := client.SendMessage(context.Background(), "+27111", "help")
			if tcase.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tcase.expectedSid, sid)

			require.Len(t, fake.params, 1)
			assert.Equal(t, tcase.expectedTo, *fake.params[0].To)
			assert.Equal(t, "help", *fake.params[0].Body)
			if tcase.expectedFrom != "" {
				assert.Equal(t, tcase.expectedFrom, *fake.params[0].From)
			}
		})
	}
}

func TestSendMessageWithMessagingService(t *testing.T) {
	fake := &fakeMessageCreator{resp: &openapi.ApiV2010Message{Sid: stringPtr("SM9")}}
	client := &ClientWrapper{api: fake, config: shared.TwilioConfig{MessagingServiceSid: "MG1"}}

	_, err := client.SendMessage(context.Background(), "+27111", "help")
	require.NoError(t, err)
	assert.Equal(t, "MG1", *fake.params[0].MessagingServiceSid)
	assert.Nil(t, fake.params[0].From)
}

func TestSendMessageDevMode(t *testing.T) {
	fake := &fakeMessageCreator{}
	client := &ClientWrapper{api: fake, config: shared.TwilioConfig{From: "+1"}, devMode: true}

	sid, err := client.SendMessage(context.Background(), "+27111", "help")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(sid, "SM"))
	assert.Empty(t, fake.params, "Dev mode should never call twilio")
}

func TestSendMessageCancelled(t *testing.T) {
	fake := &fakeMessageCreator{}
	client := &ClientWrapper{api: fake}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SendMessage(ctx, "+27111", "help")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fake.params)
}
