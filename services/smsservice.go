package services

import (
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"pharmalync/logger"

	"go.uber.org/zap"
)

// SMSSender is the fallback channel used when a retailer has no reachable
// push device. Nil disables the fallback entirely.
type SMSSender interface {
	Send(to, body string) error
}

// TwilioSMS sends plain SMS through the Twilio REST API.
type TwilioSMS struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSMS(accountSID, authToken, from string) (*TwilioSMS, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSMS{client: client, from: from}, nil
}

func (t *TwilioSMS) Send(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(to)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		return fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, *resp.ErrorMessage)
	}

	if resp.Sid != nil {
		logger.Debug("sms sent", zap.String("sid", *resp.Sid))
	}
	return nil
}
